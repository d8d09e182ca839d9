// Package web serves the built track artifacts for inspection: parsed kn5
// contents and the racing line as JSON, raw dumps for debugging, embedded
// textures as downloads. Files are re-read on every request so a rebuild
// shows up on refresh.
package web

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

var (
	kn5Path    string
	ailinePath string
)

func StartServer(addr, kn5File, aiFile, staticDir string) error {
	kn5Path = kn5File
	ailinePath = aiFile

	r := mux.NewRouter()
	r.HandleFunc("/json/kn5", HandlerKN5)
	r.HandleFunc("/json/kn5/meshes/{name}", HandlerKN5Mesh)
	r.HandleFunc("/json/ailine", HandlerAILine)
	r.HandleFunc("/dump/kn5", HandlerDumpKN5)
	r.HandleFunc("/dump/kn5/textures/{name}", HandlerDumpTexture)
	r.HandleFunc("/dump/ailine", HandlerDumpAILine)

	if staticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(staticDir)))
	}

	h := handlers.RecoveryHandler()(r)
	h = handlers.LoggingHandler(os.Stdout, h)

	log.Printf("[web] Starting server %v", addr)

	return http.ListenAndServe(addr, h)
}
