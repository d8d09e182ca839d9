package web

import (
	"bytes"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/ruggierom/ac_track_builder/ailine"
	"github.com/ruggierom/ac_track_builder/kn5"
	"github.com/ruggierom/ac_track_builder/webutils"
)

type kn5TextureInfo struct {
	Name string `json:"name"`
	Size int    `json:"size"`
}

type kn5MeshInfo struct {
	Name       string `json:"name"`
	Vertices   int    `json:"vertices"`
	Triangles  int    `json:"triangles"`
	MaterialID int32  `json:"materialId"`
}

type kn5Summary struct {
	Version   int32            `json:"version"`
	Textures  []kn5TextureInfo `json:"textures"`
	Materials []*kn5.Material  `json:"materials"`
	Meshes    []kn5MeshInfo    `json:"meshes"`
}

func HandlerKN5(w http.ResponseWriter, r *http.Request) {
	f, err := kn5.ReadFile(kn5Path)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}

	summary := kn5Summary{Version: f.Version, Materials: f.Materials}
	for _, t := range f.Textures {
		summary.Textures = append(summary.Textures, kn5TextureInfo{Name: t.Name, Size: len(t.Data)})
	}
	for _, n := range f.Meshes() {
		summary.Meshes = append(summary.Meshes, kn5MeshInfo{
			Name:       n.Name,
			Vertices:   len(n.Mesh.Vertices),
			Triangles:  len(n.Mesh.Indices) / 3,
			MaterialID: n.Mesh.MaterialID,
		})
	}
	webutils.WriteJson(w, summary)
}

func HandlerKN5Mesh(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	f, err := kn5.ReadFile(kn5Path)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	for _, n := range f.Meshes() {
		if n.Name == name {
			webutils.WriteJson(w, n.Mesh)
			return
		}
	}
	webutils.WriteError(w, errors.Errorf("No mesh %q in %q", name, kn5Path))
}

type ailineSummary struct {
	Points   int     `json:"points"`
	Length   float32 `json:"length"`
	MinSpeed float32 `json:"minSpeed"`
	MaxSpeed float32 `json:"maxSpeed"`
	Line     *ailine.Line
}

func HandlerAILine(w http.ResponseWriter, r *http.Request) {
	l, err := ailine.ReadFile(ailinePath)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	summary := ailineSummary{Points: len(l.Points), Length: l.Length(), Line: l}
	if len(l.Speed) > 0 {
		summary.MinSpeed, summary.MaxSpeed = l.Speed[0], l.Speed[0]
		for _, s := range l.Speed {
			if s < summary.MinSpeed {
				summary.MinSpeed = s
			}
			if s > summary.MaxSpeed {
				summary.MaxSpeed = s
			}
		}
	}
	webutils.WriteJson(w, summary)
}

func HandlerDumpKN5(w http.ResponseWriter, r *http.Request) {
	f, err := kn5.ReadFile(kn5Path)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	// textures are megabytes of image bytes, keep the dump readable
	stripped := *f
	stripped.Textures = nil
	webutils.WriteSpewDump(w, &stripped)
}

func HandlerDumpTexture(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	f, err := kn5.ReadFile(kn5Path)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	t := f.TextureByName(name)
	if t == nil {
		webutils.WriteError(w, errors.Errorf("No texture %q in %q", name, kn5Path))
		return
	}
	webutils.WriteFile(w, bytes.NewReader(t.Data), t.Name)
}

func HandlerDumpAILine(w http.ResponseWriter, r *http.Request) {
	l, err := ailine.ReadFile(ailinePath)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	webutils.WriteSpewDump(w, l)
}
