package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RecentLister is satisfied by *recent.Store.
type RecentLister interface {
	List() []string
}

type RecentHandler struct {
	recent RecentLister
}

func NewRecentHandler(recent RecentLister) *RecentHandler {
	return &RecentHandler{recent: recent}
}

func (h *RecentHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, RecentResponse{Searches: h.recent.List()})
}
