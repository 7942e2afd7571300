// Package route dispatches HTTP-shaped requests to handlers by method and
// URL pattern. Patterns are evaluated in registration order; the first match
// wins.
package route

import (
	"encoding/json"
	"net/http"
	"regexp"

	"nbcontents/pkg/logger"
)

// Response is what a handler produces. A zero Status means 200.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

type Handler func(r *http.Request) (*Response, error)

type entry struct {
	method  string
	pattern *regexp.Regexp
	handler Handler
}

type Router struct {
	routes []entry
}

func New() *Router {
	return &Router{}
}

// Add registers handler for method and pattern. Pattern is an unanchored
// regular expression tested against the request's URL path. Duplicates are
// not rejected; only the first registration can ever match.
func (rt *Router) Add(method, pattern string, handler Handler) {
	rt.routes = append(rt.routes, entry{
		method:  method,
		pattern: regexp.MustCompile(pattern),
		handler: handler,
	})
}

// Route invokes the first matching handler, or returns NotFound.
func (rt *Router) Route(r *http.Request) (*Response, error) {
	for _, e := range rt.routes {
		if e.method != r.Method || !e.pattern.MatchString(r.URL.Path) {
			continue
		}
		return e.handler(r)
	}
	return NotFound(), nil
}

func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resp, err := rt.Route(r)
	if err != nil {
		logger.Sugar.Errorf("Route %s %s failed: %v", r.Method, r.URL.Path, err)
		resp = Error(http.StatusInternalServerError, "Internal server error")
	}
	Write(w, resp)
}

// Write copies resp onto w.
func Write(w http.ResponseWriter, resp *Response) {
	for key, values := range resp.Header {
		for _, v := range values {
			w.Header().Add(key, v)
		}
	}
	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	if _, err := w.Write(resp.Body); err != nil {
		logger.Sugar.Warnf("Failed writing response body: %v", err)
	}
}

// JSON marshals v into a response with the given status.
func JSON(status int, v interface{}) (*Response, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return &Response{
		Status: status,
		Header: http.Header{"Content-Type": []string{"application/json"}},
		Body:   body,
	}, nil
}

type errorBody struct {
	Message string  `json:"message"`
	Reason  *string `json:"reason"`
}

// Error builds a notebook-server style error response.
func Error(status int, message string) *Response {
	// errorBody always marshals.
	resp, _ := JSON(status, errorBody{Message: message})
	return resp
}

func NotFound() *Response {
	return Error(http.StatusNotFound, "Not Found")
}
