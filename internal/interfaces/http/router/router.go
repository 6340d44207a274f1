package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const apiPrefix = "/api/v1"

// route is one operator API endpoint.
type route struct {
	method  string
	path    string
	handler gin.HandlerFunc
}

// area is a set of routes under one prefix, e.g. /orders. Middleware runs
// after the API-wide chain and only for the area's own routes.
type area struct {
	prefix     string
	middleware []gin.HandlerFunc
	routes     []route
}

func get(path string, h gin.HandlerFunc) route   { return route{http.MethodGet, path, h} }
func put(path string, h gin.HandlerFunc) route   { return route{http.MethodPut, path, h} }
func patch(path string, h gin.HandlerFunc) route { return route{http.MethodPatch, path, h} }

func (a area) mount(parent *gin.RouterGroup) {
	group := parent.Group(a.prefix, a.middleware...)
	for _, r := range a.routes {
		group.Handle(r.method, r.path, r.handler)
	}
}

// mountAPI mounts areas under prefix behind the shared middleware chain.
func mountAPI(engine *gin.Engine, prefix string, chain []gin.HandlerFunc, areas ...area) {
	api := engine.Group(prefix, chain...)
	for _, a := range areas {
		a.mount(api)
	}
}
