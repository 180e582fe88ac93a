package controller

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/bassista/room_desk/internal/api/middleware"
	"github.com/bassista/room_desk/internal/form"
	"github.com/bassista/room_desk/internal/logger"
	"github.com/bassista/room_desk/internal/modal"
	"github.com/bassista/room_desk/internal/repository"
	"github.com/bassista/room_desk/internal/session"
	"github.com/bassista/room_desk/internal/view"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var (
	ErrBadID        = errors.New("invalid id")
	ErrLookupFailed = errors.New("cannot load entity")
)

// ModalController drives one entity's modal flow for the caller's session.
type ModalController[E, P any] struct {
	Flow     *modal.Flow[E, P]
	Sessions *session.Manager
	// Select picks the entity's modal out of the session data.
	Select func(d *session.Data) *modal.Session[E]
	// Get loads the snapshot an Edit or Delete modal opens on.
	Get  func(ctx context.Context, id int) (E, error)
	Noun string
	// Prefetch warms data the flow's warnings read from the cache; optional.
	Prefetch func(ctx context.Context)
}

type modalResponse[E any] struct {
	view.Modal[E]
	Error string `json:"error,omitempty"`
}

func (mc *ModalController[E, P]) log() *logrus.Entry {
	return logger.WithComponent(mc.Flow.Name + "-controller")
}

func (mc *ModalController[E, P]) prefetch(ctx context.Context) {
	if mc.Prefetch != nil {
		mc.Prefetch(ctx)
	}
}

// update applies fn to the session's modal and returns the resulting view.
// Session I/O ignores request cancellation so an outcome is never lost.
func (mc *ModalController[E, P]) update(ctx context.Context, sid string, fn func(s *modal.Session[E]) error) (view.Modal[E], error) {
	var snapshot modal.Session[E]
	err := mc.Sessions.Update(context.WithoutCancel(ctx), sid, func(d *session.Data) error {
		s := mc.Select(d)
		fnErr := fn(s)
		snapshot = *s
		return fnErr
	})
	return view.NewModal(snapshot, mc.Noun), err
}

func (mc *ModalController[E, P]) current(ctx context.Context, sid string) (view.Modal[E], error) {
	d, err := mc.Sessions.Get(ctx, sid)
	if err != nil {
		return view.NewModal(modal.Session[E]{}, mc.Noun), err
	}
	return view.NewModal(*mc.Select(d), mc.Noun), nil
}

func (mc *ModalController[E, P]) openCreate(ctx context.Context, sid string) (view.Modal[E], error) {
	mc.prefetch(ctx)
	return mc.update(ctx, sid, mc.Flow.OpenCreate)
}

func (mc *ModalController[E, P]) lookup(ctx context.Context, rawID string) (E, error) {
	var zero E
	id, err := strconv.Atoi(rawID)
	if err != nil || id < 1 {
		return zero, fmt.Errorf("%q: %w", rawID, ErrBadID)
	}
	e, err := mc.Get(ctx, id)
	if err != nil {
		return zero, fmt.Errorf("%w %d: %w", ErrLookupFailed, id, err)
	}
	return e, nil
}

// openEdit snapshots the entity from the gateway before taking the session lock.
func (mc *ModalController[E, P]) openEdit(ctx context.Context, sid, rawID string) (view.Modal[E], error) {
	e, err := mc.lookup(ctx, rawID)
	if err != nil {
		return view.Modal[E]{}, err
	}
	mc.prefetch(ctx)
	return mc.update(ctx, sid, func(s *modal.Session[E]) error {
		return mc.Flow.OpenEdit(s, e)
	})
}

func (mc *ModalController[E, P]) openDelete(ctx context.Context, sid, rawID string) (view.Modal[E], error) {
	e, err := mc.lookup(ctx, rawID)
	if err != nil {
		return view.Modal[E]{}, err
	}
	return mc.update(ctx, sid, func(s *modal.Session[E]) error {
		return mc.Flow.OpenDelete(s, e)
	})
}

func (mc *ModalController[E, P]) change(ctx context.Context, sid string, changes form.Values) (view.Modal[E], error) {
	mc.prefetch(ctx)
	return mc.update(ctx, sid, func(s *modal.Session[E]) error {
		_, err := mc.Flow.Change(s, changes)
		return err
	})
}

func (mc *ModalController[E, P]) cancel(ctx context.Context, sid string) (view.Modal[E], error) {
	return mc.update(ctx, sid, mc.Flow.Cancel)
}

// submit runs the gateway call with the request context; both session
// updates around it are detached from it.
func (mc *ModalController[E, P]) submit(ctx context.Context, sid string) (view.Modal[E], error) {
	var result view.Modal[E]
	err := mc.Flow.Submit(ctx, func(fn func(s *modal.Session[E]) error) error {
		v, err := mc.update(ctx, sid, fn)
		result = v
		return err
	})
	return result, err
}

// statusFor maps a modal outcome to its HTTP status.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrBadID):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrLookupFailed), errors.Is(err, modal.ErrMutationFailed):
		return http.StatusBadGateway
	case errors.Is(err, modal.ErrInvalid):
		return http.StatusUnprocessableEntity
	case errors.Is(err, modal.ErrInvalidTransition), errors.Is(err, modal.ErrPending):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// userMessage is the error text shown to the caller.
func userMessage(err error) string {
	switch statusFor(err) {
	case http.StatusOK:
		return ""
	case http.StatusBadRequest:
		return "invalid id"
	case http.StatusNotFound:
		return "resource not found"
	case http.StatusBadGateway:
		return repository.DetailMessage(err)
	case http.StatusUnprocessableEntity:
		return modal.ErrInvalid.Error()
	case http.StatusConflict:
		if errors.Is(err, modal.ErrPending) {
			return modal.ErrPending.Error()
		}
		return modal.ErrInvalidTransition.Error()
	default:
		return "failed to update session"
	}
}

func (mc *ModalController[E, P]) respond(c *gin.Context, op string, v view.Modal[E], err error) {
	status := statusFor(err)
	switch {
	case status == http.StatusInternalServerError:
		mc.log().Errorf("%s: %v", op, err)
	case err != nil:
		mc.log().Debugf("%s: %v", op, err)
	}

	if status == http.StatusBadRequest || status == http.StatusInternalServerError ||
		errors.Is(err, ErrLookupFailed) {
		c.JSON(status, gin.H{"error": userMessage(err)})
		return
	}
	c.JSON(status, modalResponse[E]{Modal: v, Error: userMessage(err)})
}

// Show handles GET /api/{resource}/modal.
func (mc *ModalController[E, P]) Show(c *gin.Context) {
	v, err := mc.current(c.Request.Context(), middleware.SessionID(c))
	mc.respond(c, "show", v, err)
}

// Create handles POST /api/{resource}/modal/create.
func (mc *ModalController[E, P]) Create(c *gin.Context) {
	v, err := mc.openCreate(c.Request.Context(), middleware.SessionID(c))
	mc.respond(c, "open create", v, err)
}

// Edit handles POST /api/{resource}/modal/edit/:id.
func (mc *ModalController[E, P]) Edit(c *gin.Context) {
	v, err := mc.openEdit(c.Request.Context(), middleware.SessionID(c), c.Param("id"))
	mc.respond(c, "open edit "+c.Param("id"), v, err)
}

// Delete handles POST /api/{resource}/modal/delete/:id.
func (mc *ModalController[E, P]) Delete(c *gin.Context) {
	v, err := mc.openDelete(c.Request.Context(), middleware.SessionID(c), c.Param("id"))
	mc.respond(c, "open delete "+c.Param("id"), v, err)
}

// Change handles PATCH /api/{resource}/modal/form with a JSON object of
// field values. Field errors are reported in the body with status 200.
func (mc *ModalController[E, P]) Change(c *gin.Context) {
	var changes form.Values
	if err := c.ShouldBindJSON(&changes); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	v, err := mc.change(c.Request.Context(), middleware.SessionID(c), changes)
	mc.respond(c, "change", v, err)
}

// Submit handles POST /api/{resource}/modal/submit.
func (mc *ModalController[E, P]) Submit(c *gin.Context) {
	v, err := mc.submit(c.Request.Context(), middleware.SessionID(c))
	mc.respond(c, "submit", v, err)
}

// Cancel handles POST /api/{resource}/modal/cancel.
func (mc *ModalController[E, P]) Cancel(c *gin.Context) {
	v, err := mc.cancel(c.Request.Context(), middleware.SessionID(c))
	mc.respond(c, "cancel", v, err)
}
