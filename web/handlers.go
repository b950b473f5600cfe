package web

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/mww/stats_proxy/controller"
	"github.com/mww/stats_proxy/model"
	"github.com/unrolled/render"
)

// Sent in place of a player or a list when there is nothing to return.
var emptyObject = struct{}{}

func rootHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		players := ctrl.GetAllPlayers(r.Context())

		ids := make([]string, 0, len(players))
		for _, p := range players {
			ids = append(ids, p.ID)
		}

		render.HTML(w, http.StatusOK, "index", strings.Join(ids, ","))
	}
}

func healthHandler(render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.Text(w, http.StatusOK, "ok")
	}
}

func playerHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.URL.Query().Get("id"))
		if id == "" {
			render.JSON(w, http.StatusOK, emptyObject)
			return
		}

		p := ctrl.GetPlayerByID(r.Context(), id)
		if p == nil {
			render.JSON(w, http.StatusOK, emptyObject)
			return
		}

		render.JSON(w, http.StatusOK, p)
	}
}

func playersHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ids := parseIDs(r.URL.Query().Get("ids"))
		if len(ids) == 0 {
			render.JSON(w, http.StatusOK, emptyObject)
			return
		}

		renderPlayers(w, render, ctrl.GetMultiplePlayersByIDs(r.Context(), ids))
	}
}

func latestHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ids := parseIDs(r.URL.Query().Get("ids"))
		if len(ids) == 0 {
			render.JSON(w, http.StatusOK, emptyObject)
			return
		}

		renderPlayers(w, render, ctrl.GetLatestPlayersByIDs(r.Context(), ids))
	}
}

func invalidateHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := model.ParseListType(chi.URLParam(r, "list"))
		if err != nil {
			render.Text(w, http.StatusBadRequest, err.Error())
			return
		}

		if err := ctrl.Invalidate(r.Context(), list); err != nil {
			render.Text(w, http.StatusInternalServerError, err.Error())
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func renderPlayers(w http.ResponseWriter, render *render.Render, players []model.Player) {
	if len(players) == 0 {
		render.JSON(w, http.StatusOK, emptyObject)
		return
	}
	render.JSON(w, http.StatusOK, players)
}

// Splits a comma separated list of ids. Blank and repeated ids are dropped.
func parseIDs(raw string) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, id := range strings.Split(raw, ",") {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}
