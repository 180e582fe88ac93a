package controller

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/bassista/room_desk/internal/cache"
	"github.com/bassista/room_desk/internal/logger"
	"github.com/bassista/room_desk/internal/repository"
	"github.com/bassista/room_desk/internal/view"
	"github.com/gin-gonic/gin"
)

var ErrBadPaging = errors.New("invalid paging parameters")

// PageFetcher loads one page of a resource from the gateway.
type PageFetcher[T any] func(ctx context.Context, page, limit int) (repository.Page[T], error)

// ListController serves paginated lists of one resource through the query cache.
type ListController[T any] struct {
	Resource     cache.Resource
	Cache        cache.Loader
	Fetch        PageFetcher[T]
	DefaultLimit int
	MaxLimit     int
}

// Paging reads the page and limit query parameters.
func (lc *ListController[T]) Paging(c *gin.Context) (page, limit int, err error) {
	page, err = queryInt(c, "page", 1)
	if err != nil || page < 1 {
		return 0, 0, fmt.Errorf("page must be a positive integer: %w", ErrBadPaging)
	}
	limit, err = queryInt(c, "limit", lc.DefaultLimit)
	if err != nil || limit < 1 || (lc.MaxLimit > 0 && limit > lc.MaxLimit) {
		return 0, 0, fmt.Errorf("limit must be between 1 and %d: %w", lc.MaxLimit, ErrBadPaging)
	}
	return page, limit, nil
}

func queryInt(c *gin.Context, name string, fallback int) (int, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

// Load returns the list view of one page.
func (lc *ListController[T]) Load(ctx context.Context, page, limit int) view.List[T] {
	key := cache.Key{Resource: lc.Resource, Page: page, Limit: limit}
	res := cache.Load(ctx, lc.Cache, key, func(ctx context.Context) (repository.Page[T], error) {
		return lc.Fetch(ctx, page, limit)
	})
	if res.Status == cache.StatusError {
		logger.WithComponent("list-controller").Warnf("load %s failed: %v", key, res.Err)
	}
	return view.NewList(lc.Resource, page, limit, res)
}

// List handles GET /api/{resource}. A failed fetch answers 502 with the
// list view carrying the error message.
func (lc *ListController[T]) List(c *gin.Context) {
	page, limit, err := lc.Paging(c)
	if err != nil {
		logger.WithComponent("list-controller").Debugf("GET %s: %v", lc.Resource, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	list := lc.Load(c.Request.Context(), page, limit)
	status := http.StatusOK
	if list.Status == cache.StatusError {
		status = http.StatusBadGateway
	}
	c.JSON(status, list)
}
