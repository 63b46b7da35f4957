package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"scrapectl/pkg/history"
	"scrapectl/pkg/models"

	"github.com/gin-gonic/gin"
)

// HealthCheck reports that the server is up
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListHistory lists every entry, newest first
func ListHistory(store *history.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := store.Load(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if entries == nil {
			entries = []models.HistoryEntry{}
		}
		c.JSON(http.StatusOK, gin.H{"entries": entries, "total": len(entries)})
	}
}

// GetHistory returns one entry by position
func GetHistory(store *history.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		entry, ok := lookup(c, store)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, entry)
	}
}

// ExportHistory returns one entry's data as a Markdown JSON block
func ExportHistory(store *history.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		entry, ok := lookup(c, store)
		if !ok {
			return
		}
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(history.ExportMarkdown(entry)))
	}
}

// DeleteHistory removes one entry by position
func DeleteHistory(store *history.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		index, ok := parseIndex(c)
		if !ok {
			return
		}
		if _, err := store.Load(c.Request.Context()); err != nil {
			respondStoreError(c, err)
			return
		}
		if err := store.DeleteAt(c.Request.Context(), index); err != nil {
			respondStoreError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// ClearHistory removes every entry
func ClearHistory(store *history.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := store.Clear(c.Request.Context()); err != nil {
			respondStoreError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func lookup(c *gin.Context, store *history.Store) (models.HistoryEntry, bool) {
	index, ok := parseIndex(c)
	if !ok {
		return models.HistoryEntry{}, false
	}
	// Re-read so entries written by the CLI are visible.
	if _, err := store.Load(c.Request.Context()); err != nil {
		respondStoreError(c, err)
		return models.HistoryEntry{}, false
	}
	entry, err := store.Get(c.Request.Context(), index)
	if err != nil {
		respondStoreError(c, err)
		return models.HistoryEntry{}, false
	}
	return entry, true
}

func parseIndex(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "index must be a non-negative integer"})
		return 0, false
	}
	return index, true
}

func respondStoreError(c *gin.Context, err error) {
	if errors.Is(err, history.ErrIndexOutOfRange) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
