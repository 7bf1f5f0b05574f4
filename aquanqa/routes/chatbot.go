package routes

import (
	"aquanqa/aquanqa/config"
	"aquanqa/aquanqa/controllers"
	"aquanqa/aquanqa/middlewares"
	"aquanqa/aquanqa/utils/types"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
)

func ChatbotRoutes(ctrl *controllers.ChatbotController, cfg config.Config) chi.Router {
	r := chi.NewRouter()

	// Public surface. Identity is attached when a token is present so
	// conversations get attributed, but anonymous queries are allowed.
	r.Group(func(gr chi.Router) {
		gr.Use(middlewares.OptionalAuthMiddleware(cfg))

		gr.Post("/query", handleJSON(func(r *http.Request) (any, int, error) {
			var req types.ChatbotQuery
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				return nil, http.StatusBadRequest, err
			}
			userID := middlewares.UserIDFromContext(r.Context())
			result, err := ctrl.Query(r.Context(), userID, req)
			if err != nil {
				return nil, 0, err
			}
			return result, http.StatusOK, nil
		}))
	})

	r.Get("/recommended", handleJSON(func(r *http.Request) (any, int, error) {
		limit := queryInt(r, "limit", 5)
		questions, err := ctrl.Recommended(r.Context(), limit)
		if err != nil {
			return nil, 0, err
		}
		return map[string]any{"recommended_questions": questions, "total": len(questions)}, http.StatusOK, nil
	}))

	r.Get("/suggest", handleJSON(func(r *http.Request) (any, int, error) {
		q := r.URL.Query().Get("q")
		suggestions, err := ctrl.Suggest(r.Context(), q, queryInt(r, "limit", 10))
		if err != nil {
			return nil, 0, err
		}
		return map[string]any{"suggestions": suggestions, "total": len(suggestions)}, http.StatusOK, nil
	}))

	// Staff-only surface.
	r.Group(func(gr chi.Router) {
		gr.Use(middlewares.AuthMiddleware(cfg))

		gr.Get("/conversations", handleJSON(func(r *http.Request) (any, int, error) {
			var userID *int
			if v := r.URL.Query().Get("user_id"); v != "" {
				id, err := strconv.Atoi(v)
				if err != nil {
					return nil, http.StatusBadRequest, err
				}
				userID = &id
			}
			history, err := ctrl.History(r.Context(), userID, queryInt(r, "limit", 50))
			if err != nil {
				return nil, 0, err
			}
			return history, http.StatusOK, nil
		}))

		gr.Get("/statistics", handleJSON(func(r *http.Request) (any, int, error) {
			stats, err := ctrl.Statistics(r.Context())
			if err != nil {
				return nil, 0, err
			}
			return stats, http.StatusOK, nil
		}))
	})

	// Websocket query: one question in, one resolution out.
	r.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusInternalError, "internal error")

		ctx := r.Context()
		typ, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		if typ != websocket.MessageText {
			conn.Close(websocket.StatusUnsupportedData, "unsupported data")
			return
		}
		var input struct {
			Token string             `json:"token"`
			Query types.ChatbotQuery `json:"query"`
		}
		if err := json.Unmarshal(data, &input); err != nil {
			conn.Write(ctx, websocket.MessageText, []byte(`{"error":"invalid json"}`))
			return
		}

		userID := middlewares.UserIDFromToken(input.Token, cfg)

		result, err := ctrl.Query(ctx, userID, input.Query)
		if err != nil {
			payload, _ := json.Marshal(map[string]string{"error": err.Error()})
			conn.Write(ctx, websocket.MessageText, payload)
			conn.Close(websocket.StatusPolicyViolation, "query failed")
			return
		}
		payload, err := json.Marshal(result)
		if err != nil {
			return
		}
		if err := conn.Write(ctx, websocket.MessageText, payload); err != nil {
			return
		}
		conn.Close(websocket.StatusNormalClosure, "")
	})

	return r
}

func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
