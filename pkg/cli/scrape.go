package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"scrapectl/pkg/actions"
	"scrapectl/pkg/cli/format"
	"scrapectl/pkg/cli/logger"
	"scrapectl/pkg/lifecycle"
	"scrapectl/pkg/views"
)

// RunOperation validates form, performs the call and prints the result in
// the requested view. A successful run is appended to history.
func (a *App) RunOperation(ctx context.Context, form actions.Form, mode views.Mode) error {
	session, err := a.newSession(ctx)
	if err != nil {
		return err
	}

	if err := session.SetKind(form.Kind); err != nil {
		return err
	}
	session.SetURL(form.URL)
	session.SetURLs(form.URLs)
	session.SetWhitelist(form.Whitelist)
	session.SetBlacklist(form.Blacklist)
	session.SetLinkLimit(form.LinkLimit)

	attempt, err := session.Submit()
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "⏳ %s: %s (this may take a few seconds)\n", format.ActionLabel(attempt.Kind), attempt.Target)
	outcome, persistErr := session.Run(ctx, a.getClient(), attempt)
	if persistErr != nil {
		logger.LogError(persistErr, "history append failed for %s", attempt.ID)
		fmt.Fprint(a.out, format.FormatErrorMessage(fmt.Errorf("result not saved to history: %w", persistErr)))
	}

	if !outcome.Succeeded() {
		msg := lifecycle.FailureMessage(outcome.Err)
		if msg == "" {
			msg, _ = outcome.Payload.ErrorMessage()
		}
		return errors.New(msg)
	}

	toggle := session.Toggle()
	if !toggle.Select(mode) {
		fmt.Fprintf(a.out, "(view %q not available, showing raw)\n", mode)
	}
	fmt.Fprint(a.out, format.FormatResult(toggle.Projection(), toggle.Mode()))
	return nil
}

// Health checks that the scraper service is reachable.
func (a *App) Health(ctx context.Context) error {
	client := a.getClient()
	fmt.Fprintf(a.out, "⏳ Checking scraper service at %s... ", client.BaseURL())
	if err := client.CheckHealth(ctx); err != nil {
		fmt.Fprintln(a.out, "✗")
		return fmt.Errorf("scraper service unavailable: %w", err)
	}
	fmt.Fprintln(a.out, "✓")
	return nil
}

// ParseMode converts a --view flag into a view mode.
func ParseMode(s string) (views.Mode, error) {
	mode := views.Mode(strings.ToLower(strings.TrimSpace(s)))
	switch mode {
	case "":
		return views.ModeRaw, nil
	case views.ModeRaw, views.ModeLinks, views.ModeRelated, views.ModeMedia:
		return mode, nil
	}
	return "", fmt.Errorf("unknown view %q (want raw, links, related or media)", s)
}
