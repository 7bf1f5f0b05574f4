package routes

import (
	"aquanqa/aquanqa/config"
	"aquanqa/aquanqa/controllers"
	"aquanqa/aquanqa/middlewares"
	"aquanqa/aquanqa/services/knowledge"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func KnowledgeRoutes(ctrl *controllers.KnowledgeController, chatbotCtrl *controllers.ChatbotController, cfg config.Config) chi.Router {
	r := chi.NewRouter()
	r.Group(func(gr chi.Router) {
		gr.Use(middlewares.AuthMiddleware(cfg))

		gr.Get("/", handleJSON(func(r *http.Request) (any, int, error) {
			includeInactive := r.URL.Query().Get("include_inactive") == "true"
			var categoryID *uuid.UUID
			if v := r.URL.Query().Get("category_id"); v != "" {
				id, err := uuid.Parse(v)
				if err != nil {
					return nil, http.StatusBadRequest, err
				}
				categoryID = &id
			}
			entries, err := ctrl.List(r.Context(), includeInactive, categoryID)
			if err != nil {
				return nil, 0, err
			}
			return entries, http.StatusOK, nil
		}))

		gr.Post("/", handleJSON(func(r *http.Request) (any, int, error) {
			var in knowledge.EntryInput
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				return nil, http.StatusBadRequest, err
			}
			entry, err := ctrl.Create(r.Context(), in)
			if err != nil {
				return nil, 0, err
			}
			return entry, http.StatusCreated, nil
		}))

		gr.Get("/frequent", handleJSON(func(r *http.Request) (any, int, error) {
			questions, err := chatbotCtrl.Recommended(r.Context(), queryInt(r, "limit", 10))
			if err != nil {
				return nil, 0, err
			}
			return map[string]any{"frequent_questions": questions, "total": len(questions)}, http.StatusOK, nil
		}))

		// Batch re-encode of the whole knowledge base. Idempotent.
		gr.Post("/regenerate", handleJSON(func(r *http.Request) (any, int, error) {
			processed, err := ctrl.RegenerateEmbeddings(r.Context())
			if err != nil {
				return nil, 0, err
			}
			return map[string]any{"processed": processed}, http.StatusOK, nil
		}))

		gr.Get("/{id}", handleJSON(func(r *http.Request) (any, int, error) {
			id, err := uuid.Parse(chi.URLParam(r, "id"))
			if err != nil {
				return nil, http.StatusBadRequest, err
			}
			entry, err := ctrl.Get(r.Context(), id)
			if err != nil {
				return nil, 0, err
			}
			return entry, http.StatusOK, nil
		}))

		gr.Put("/{id}", handleJSON(func(r *http.Request) (any, int, error) {
			id, err := uuid.Parse(chi.URLParam(r, "id"))
			if err != nil {
				return nil, http.StatusBadRequest, err
			}
			var in knowledge.EntryInput
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				return nil, http.StatusBadRequest, err
			}
			entry, err := ctrl.Update(r.Context(), id, in)
			if err != nil {
				return nil, 0, err
			}
			return entry, http.StatusOK, nil
		}))

		// Soft delete: entries are deactivated, never removed.
		gr.Delete("/{id}", handleJSON(func(r *http.Request) (any, int, error) {
			id, err := uuid.Parse(chi.URLParam(r, "id"))
			if err != nil {
				return nil, http.StatusBadRequest, err
			}
			if err := ctrl.Deactivate(r.Context(), id); err != nil {
				return nil, 0, err
			}
			return map[string]string{"message": "entry deactivated"}, http.StatusOK, nil
		}))

		gr.Get("/categories", handleJSON(func(r *http.Request) (any, int, error) {
			categories, err := ctrl.ListCategories(r.Context())
			if err != nil {
				return nil, 0, err
			}
			return categories, http.StatusOK, nil
		}))

		gr.Post("/categories", handleJSON(func(r *http.Request) (any, int, error) {
			var in knowledge.CategoryInput
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				return nil, http.StatusBadRequest, err
			}
			category, err := ctrl.CreateCategory(r.Context(), in)
			if err != nil {
				return nil, 0, err
			}
			return category, http.StatusCreated, nil
		}))

		gr.Put("/categories/{id}", handleJSON(func(r *http.Request) (any, int, error) {
			id, err := uuid.Parse(chi.URLParam(r, "id"))
			if err != nil {
				return nil, http.StatusBadRequest, err
			}
			var in knowledge.CategoryInput
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				return nil, http.StatusBadRequest, err
			}
			category, err := ctrl.UpdateCategory(r.Context(), id, in)
			if err != nil {
				return nil, 0, err
			}
			return category, http.StatusOK, nil
		}))

		gr.Delete("/categories/{id}", handleJSON(func(r *http.Request) (any, int, error) {
			id, err := uuid.Parse(chi.URLParam(r, "id"))
			if err != nil {
				return nil, http.StatusBadRequest, err
			}
			if err := ctrl.DeleteCategory(r.Context(), id); err != nil {
				return nil, 0, err
			}
			return map[string]string{"message": "category deleted"}, http.StatusOK, nil
		}))
	})
	return r
}
