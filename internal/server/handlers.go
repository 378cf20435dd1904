package server

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/foxwhite25/maabridge/internal/plan"
	"github.com/foxwhite25/maabridge/internal/resource"
	"github.com/foxwhite25/maabridge/pkg/tasks"
)

// maxBodySize bounds task and plan request bodies.
const maxBodySize = 1 << 20

// StatusResponse describes the connection.
type StatusResponse struct {
	State   string `json:"state"`
	Target  string `json:"target"`
	UUID    string `json:"uuid,omitempty"`
	Running bool   `json:"running"`
}

// TaskResponse describes an appended task.
type TaskResponse struct {
	ID   int32  `json:"id"`
	Name string `json:"name"`
}

// PlanResponse lists the tasks appended from a plan.
type PlanResponse struct {
	Name  string         `json:"name,omitempty"`
	Tasks []TaskResponse `json:"tasks"`
}

// ItemResponse is an item index entry.
type ItemResponse struct {
	ID string `json:"id"`
	resource.Item
}

func (s *Server) getVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"engine": s.ctl.Version()})
}

func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	uuid, _ := s.ctl.UUID()
	writeJSON(w, http.StatusOK, StatusResponse{
		State:   s.ctl.State().String(),
		Target:  s.ctl.Target(),
		UUID:    uuid,
		Running: s.ctl.Running(),
	})
}

// appendTask appends one task object, for example {"type":"Fight","stage":"1-7"}.
func (s *Server) appendTask(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
		return
	}

	t, err := plan.ParseTask(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
		return
	}

	resp, err := s.append(t)
	if err != nil {
		writeBridgeError(w, err, map[string]any{"task": t.Name()})
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// appendPlan appends every task of a YAML or JSON plan, stopping at the first
// rejected task.
func (s *Server) appendPlan(w http.ResponseWriter, r *http.Request) {
	p, err := plan.Parse(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
		return
	}

	out := PlanResponse{Name: p.Name, Tasks: make([]TaskResponse, 0, len(p.Tasks))}
	for i, t := range p.Tasks {
		resp, err := s.append(t)
		if err != nil {
			writeBridgeError(w, err, map[string]any{
				"task":     t.Name(),
				"index":    i,
				"appended": out.Tasks,
			})
			return
		}
		out.Tasks = append(out.Tasks, resp)
	}
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) append(t tasks.Configurable) (TaskResponse, error) {
	sub, err := s.ctl.Append(t)
	if err != nil {
		return TaskResponse{}, err
	}
	id, _ := sub.ID()
	s.log.Info().Stringer("task", sub).Msg("task appended")
	return TaskResponse{ID: id, Name: sub.Name()}, nil
}

func (s *Server) start(w http.ResponseWriter, r *http.Request) {
	if err := s.ctl.Start(); err != nil {
		writeBridgeError(w, err, nil)
		return
	}
	writeSuccess(w)
}

func (s *Server) stop(w http.ResponseWriter, r *http.Request) {
	if err := s.ctl.Stop(); err != nil {
		writeBridgeError(w, err, nil)
		return
	}
	writeSuccess(w)
}

func (s *Server) itemCount(w http.ResponseWriter, r *http.Request) {
	items := s.ctl.Items()
	writeJSON(w, http.StatusOK, map[string]any{"path": items.Path(), "count": items.Len()})
}

func (s *Server) getItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "itemID")
	item, ok := s.ctl.Items().Lookup(id)
	if !ok {
		writeError(w, http.StatusNotFound, ErrCodeNotFound, "unknown item "+id)
		return
	}
	writeJSON(w, http.StatusOK, ItemResponse{ID: id, Item: item})
}
