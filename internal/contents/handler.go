package handler

import (
	"errors"
	"io"
	"net/http"
	"regexp"

	"nbcontents/internal/contents/model"
	"nbcontents/internal/contents/service"
	"nbcontents/internal/route"
	"nbcontents/pkg/logger"
)

const (
	checkpointsPattern = model.ServiceURL + "/(.*)/checkpoints"
	filenamePattern    = `\w+\.ipynb`
	untitledPattern    = "^" + model.ServiceURL + "/?$"
)

var filenameRegex = regexp.MustCompile(filenamePattern)

// ParseFilename returns the first "name.ipynb" segment of path, or "".
func ParseFilename(path string) string {
	return filenameRegex.FindString(path)
}

type ContentsHandler struct {
	Service *service.ContentsService
	router  *route.Router
}

func NewContentsHandler(svc *service.ContentsService) *ContentsHandler {
	h := &ContentsHandler{Service: svc, router: route.New()}

	h.router.Add(http.MethodGet, checkpointsPattern, h.GetCheckpoints)
	h.router.Add(http.MethodGet, filenamePattern, h.GetNotebook)
	h.router.Add(http.MethodPut, filenamePattern, h.SaveNotebook)
	h.router.Add(http.MethodPost, untitledPattern, h.CreateUntitled)
	return h
}

// Dispatch routes r to the matching contents endpoint.
func (h *ContentsHandler) Dispatch(r *http.Request) (*route.Response, error) {
	return h.router.Route(r)
}

func (h *ContentsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *ContentsHandler) GetCheckpoints(r *http.Request) (*route.Response, error) {
	return route.JSON(http.StatusOK, h.Service.Checkpoints())
}

func (h *ContentsHandler) GetNotebook(r *http.Request) (*route.Response, error) {
	filename := ParseFilename(r.URL.Path)

	m, err := h.Service.GetNotebook(r.Context(), filename)
	if errors.Is(err, service.ErrNotebookNotFound) {
		return route.Error(http.StatusNotFound, "No such file: "+filename), nil
	}
	if err != nil {
		return nil, err
	}
	return route.JSON(http.StatusOK, m)
}

func (h *ContentsHandler) SaveNotebook(r *http.Request) (*route.Response, error) {
	filename := ParseFilename(r.URL.Path)

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return route.Error(http.StatusBadRequest, "Could not read request body"), nil
	}

	m, err := h.Service.SaveNotebook(r.Context(), filename, string(raw))
	if errors.Is(err, service.ErrInvalidNotebook) {
		return route.Error(http.StatusBadRequest, "Notebook content must be valid JSON"), nil
	}
	if err != nil {
		return nil, err
	}

	logger.Sugar.Infof("Saved notebook %s (%d bytes)", filename, m.Size)
	return route.JSON(http.StatusOK, m)
}

func (h *ContentsHandler) CreateUntitled(r *http.Request) (*route.Response, error) {
	m, err := h.Service.NewUntitled(r.Context())
	if err != nil {
		return nil, err
	}
	logger.Sugar.Infof("Created notebook %s", m.Name)
	return route.JSON(http.StatusCreated, m)
}
