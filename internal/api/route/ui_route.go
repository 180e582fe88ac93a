package route

import (
	"net/http"
	"strings"

	"github.com/bassista/room_desk/internal/api/controller"
	"github.com/bassista/room_desk/internal/repository"
	"github.com/gin-gonic/gin"
)

// NewUIRouter sets up the server-rendered admin pages under /ui.
func NewUIRouter(r *gin.Engine, group *gin.RouterGroup, res *resources) {
	rooms := &controller.UIController[repository.Room, repository.RoomCreate]{
		List:     res.roomList,
		Modal:    res.roomModal,
		Template: "rooms.html",
		Title:    "Rooms",
		Active:   "rooms",
		Path:     "/ui/rooms",
	}
	bookings := &controller.UIController[repository.Booking, repository.BookingCreate]{
		List:       res.bookingList,
		Modal:      res.bookingModal,
		Template:   "bookings.html",
		Title:      "Bookings",
		Active:     "bookings",
		Path:       "/ui/bookings",
		Checkboxes: []string{"has_coffee"},
		Options:    res.roomOptions,
	}

	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/ui/rooms")
	})
	group.GET("", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/ui/rooms")
	})

	registerPage(group, "rooms", rooms)
	registerPage(group, "bookings", bookings)

	r.NoRoute(func(c *gin.Context) {
		p := c.Request.URL.Path
		if p == "/ui" || strings.HasPrefix(p, "/ui/") {
			c.Redirect(http.StatusSeeOther, "/ui/rooms")
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
}

// pageHandlers is the handler set of one admin page.
type pageHandlers interface {
	Page(c *gin.Context)
	OpenCreate(c *gin.Context)
	OpenEdit(c *gin.Context)
	OpenDelete(c *gin.Context)
	Change(c *gin.Context)
	Submit(c *gin.Context)
	Cancel(c *gin.Context)
}

func registerPage(group *gin.RouterGroup, name string, h pageHandlers) {
	group.GET(name, h.Page)
	group.POST(name+"/modal/create", h.OpenCreate)
	group.POST(name+"/modal/edit/:id", h.OpenEdit)
	group.POST(name+"/modal/delete/:id", h.OpenDelete)
	group.POST(name+"/modal/form", h.Change)
	group.POST(name+"/modal/submit", h.Submit)
	group.POST(name+"/modal/cancel", h.Cancel)
}
