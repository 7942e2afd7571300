package router

import (
	"net/http"

	"nbcontents/internal/contents/model"
	"nbcontents/middleware"
	"nbcontents/socket"
)

func Setup(contents http.Handler, hub *socket.Hub, corsOrigin string) http.Handler {
	mux := http.NewServeMux()

	// WebSocket
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		socket.ServeWs(hub, w, r)
	})

	// Contents API
	mux.Handle(model.ServiceURL, contents)
	mux.Handle(model.ServiceURL+"/", contents)

	return middleware.CORSMiddleware(corsOrigin)(middleware.RequestLogger(mux))
}
