package webutils

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/davecgh/go-spew/spew"
)

var spewConfig *spew.ConfigState

func init() {
	spewConfig = spew.NewDefaultConfig()
	spewConfig.DisableCapacities = true
	spewConfig.MaxDepth = 6
}

func WriteFileHeaders(w http.ResponseWriter, name string) {
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", "attachment; filename=\""+name+"\"")
}

func WriteFile(w http.ResponseWriter, in io.Reader, name string) {
	WriteFileHeaders(w, name)
	io.Copy(w, in)
}

func WriteJson(w http.ResponseWriter, data interface{}) {
	res, err := json.Marshal(data)
	if err != nil {
		WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(res)
}

func WriteError(w http.ResponseWriter, err error) {
	log.Printf("[web] handler error: %v", err)
	w.WriteHeader(http.StatusInternalServerError)
	WriteJson(w, map[string]string{"error": err.Error()})
}

// WriteSpewDump renders any structure as a plain text debug dump.
func WriteSpewDump(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(spewConfig.Sdump(data)))
}
