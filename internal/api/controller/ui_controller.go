package controller

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/bassista/room_desk/internal/api/middleware"
	"github.com/bassista/room_desk/internal/form"
	"github.com/bassista/room_desk/internal/modal"
	"github.com/bassista/room_desk/internal/repository"
	"github.com/bassista/room_desk/internal/view"
	"github.com/gin-gonic/gin"
)

// formMarker is posted by the create and edit forms, whose fields are merged
// into the session before a submit.
const formMarker = "_form"

// PageData is what an admin page template renders.
type PageData[E any] struct {
	Title      string
	Active     string
	Path       string
	List       view.List[E]
	Modal      view.Modal[E]
	Rooms      []view.RoomOption
	RoomsError string
	Notice     string
}

// UIController renders one resource's admin page and handles its modal form
// posts with post/redirect/get.
type UIController[E, P any] struct {
	List     *ListController[E]
	Modal    *ModalController[E, P]
	Template string
	Title    string
	Active   string
	Path     string
	// Checkboxes are absent from a post when unchecked.
	Checkboxes []string
	// Options loads the room select; optional.
	Options RoomOptionsLoader
}

func (uc *UIController[E, P]) render(c *gin.Context, status int, page, limit int, notice string) {
	ctx := c.Request.Context()
	data := PageData[E]{
		Title:  uc.Title,
		Active: uc.Active,
		Path:   uc.Path,
		Notice: notice,
	}
	if page > 0 {
		data.List = uc.List.Load(ctx, page, limit)
	} else {
		data.List = view.List[E]{Resource: uc.List.Resource, Items: []E{}}
	}

	m, err := uc.Modal.current(ctx, middleware.SessionID(c))
	if err != nil {
		uc.Modal.log().Errorf("read session: %v", err)
	}
	data.Modal = m

	if uc.Options != nil {
		opts, err := uc.Options(ctx)
		if err != nil {
			data.RoomsError = repository.DetailMessage(err)
		}
		data.Rooms = opts
	}
	c.HTML(status, uc.Template, data)
}

// Page handles GET /ui/{resource}.
func (uc *UIController[E, P]) Page(c *gin.Context) {
	page, limit, err := uc.List.Paging(c)
	if err != nil {
		uc.render(c, http.StatusBadRequest, 0, 0, err.Error())
		return
	}
	uc.render(c, http.StatusOK, page, limit, "")
}

// returnTo is the page the form was posted from, read from its hidden
// page and limit fields.
func (uc *UIController[E, P]) returnTo(c *gin.Context) string {
	q := url.Values{}
	for _, name := range []string{"page", "limit"} {
		if n, err := strconv.Atoi(c.PostForm(name)); err == nil && n > 0 {
			q.Set(name, strconv.Itoa(n))
		}
	}
	if len(q) == 0 {
		return uc.Path
	}
	return uc.Path + "?" + q.Encode()
}

func (uc *UIController[E, P]) postedPaging(c *gin.Context) (page, limit int) {
	page, limit = 1, uc.List.DefaultLimit
	if n, err := strconv.Atoi(c.PostForm("page")); err == nil && n > 0 {
		page = n
	}
	if n, err := strconv.Atoi(c.PostForm("limit")); err == nil && n > 0 && (uc.List.MaxLimit == 0 || n <= uc.List.MaxLimit) {
		limit = n
	}
	return page, limit
}

// postedValues reads the schema's fields from a url-encoded form post.
func (uc *UIController[E, P]) postedValues(c *gin.Context) form.Values {
	values := form.Values{}
	for _, name := range uc.Modal.Flow.Schema.Fields() {
		if v, ok := c.GetPostForm(name); ok {
			values[name] = v
		}
	}
	for _, name := range uc.Checkboxes {
		if _, ok := values[name]; !ok {
			values[name] = false
		}
	}
	return values
}

// finish redirects back when the outcome is recorded in the session, and
// renders the page with a notice otherwise.
func (uc *UIController[E, P]) finish(c *gin.Context, op string, err error) {
	if err == nil || errors.Is(err, modal.ErrInvalid) || errors.Is(err, modal.ErrMutationFailed) {
		if err != nil {
			uc.Modal.log().Debugf("ui %s: %v", op, err)
		}
		c.Redirect(http.StatusSeeOther, uc.returnTo(c))
		return
	}

	status := statusFor(err)
	if status == http.StatusInternalServerError {
		uc.Modal.log().Errorf("ui %s: %v", op, err)
	}
	page, limit := uc.postedPaging(c)
	uc.render(c, status, page, limit, userMessage(err))
}

// OpenCreate handles POST /ui/{resource}/modal/create.
func (uc *UIController[E, P]) OpenCreate(c *gin.Context) {
	_, err := uc.Modal.openCreate(c.Request.Context(), middleware.SessionID(c))
	uc.finish(c, "open create", err)
}

// OpenEdit handles POST /ui/{resource}/modal/edit/:id.
func (uc *UIController[E, P]) OpenEdit(c *gin.Context) {
	_, err := uc.Modal.openEdit(c.Request.Context(), middleware.SessionID(c), c.Param("id"))
	uc.finish(c, "open edit", err)
}

// OpenDelete handles POST /ui/{resource}/modal/delete/:id.
func (uc *UIController[E, P]) OpenDelete(c *gin.Context) {
	_, err := uc.Modal.openDelete(c.Request.Context(), middleware.SessionID(c), c.Param("id"))
	uc.finish(c, "open delete", err)
}

// Change handles POST /ui/{resource}/modal/form, the form's validate button.
func (uc *UIController[E, P]) Change(c *gin.Context) {
	_, err := uc.Modal.change(c.Request.Context(), middleware.SessionID(c), uc.postedValues(c))
	uc.finish(c, "change", err)
}

// Submit handles POST /ui/{resource}/modal/submit. Create and edit forms
// merge their posted fields first; the delete confirmation posts none.
func (uc *UIController[E, P]) Submit(c *gin.Context) {
	ctx := c.Request.Context()
	sid := middleware.SessionID(c)
	if _, ok := c.GetPostForm(formMarker); ok {
		if _, err := uc.Modal.change(ctx, sid, uc.postedValues(c)); err != nil {
			uc.finish(c, "submit", err)
			return
		}
	}
	_, err := uc.Modal.submit(ctx, sid)
	uc.finish(c, "submit", err)
}

// Cancel handles POST /ui/{resource}/modal/cancel.
func (uc *UIController[E, P]) Cancel(c *gin.Context) {
	_, err := uc.Modal.cancel(c.Request.Context(), middleware.SessionID(c))
	uc.finish(c, "cancel", err)
}
