package meal

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/cantine/cantine/internal/rest"
	"github.com/gorilla/mux"
)

type MealDTO struct {
	Id          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// ListMeals godoc
// @Summary List catalog meals
// @Tags Meals
// @Produce json
// @Success 200 {array} MealDTO
// @Router /api/meals [get]
func (h *Handler) ListMeals(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	meals, err := h.service.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]MealDTO, 0, len(meals))
	for _, m := range meals {
		dtos = append(dtos, MealToDTO(m))
	}
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// CreateMeal godoc
// @Summary Create a catalog meal
// @Tags Meals
// @Accept json
// @Produce json
// @Param meal body MealDTO true "Meal details, id is ignored"
// @Success 201 {object} MealDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid payload"
// @Router /api/meals [post]
// @Security XUserId
func (h *Handler) CreateMeal(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var dto MealDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Invalid request body format"})
		return
	}
	if dto.Name == "" {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Name is required"})
		return
	}

	created, err := h.service.Create(r.Context(), dto.Name, dto.Description)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(MealToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// UpdateMeal godoc
// @Summary Update a catalog meal
// @Description Update a meal and rewrite its snapshot in every stored schedule
// @Tags Meals
// @Accept json
// @Produce json
// @Param mealId path int true "Meal ID"
// @Param meal body MealDTO true "New meal details"
// @Success 200 {object} MealDTO
// @Failure 404 {object} rest.ErrorResponse "Meal not found"
// @Router /api/meals/{mealId} [put]
// @Security XUserId
func (h *Handler) UpdateMeal(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	vars := mux.Vars(r)

	mealId, err := strconv.Atoi(vars["mealId"])
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Invalid meal ID"})
		return
	}
	var dto MealDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Invalid request body format"})
		return
	}

	updated, err := h.service.Update(r.Context(), Meal{Id: mealId, Name: dto.Name, Description: dto.Description})
	if err != nil {
		if errors.Is(err, ErrMealNotFound) {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(rest.ErrorResponse{Error: err.Error()})
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := json.NewEncoder(w).Encode(MealToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// DeleteMeal godoc
// @Summary Delete a catalog meal
// @Description Delete a meal unless a schedule day or a user selection still references it
// @Tags Meals
// @Produce json
// @Param mealId path int true "Meal ID"
// @Success 204
// @Failure 404 {object} rest.ErrorResponse "Meal not found"
// @Failure 409 {object} rest.ErrorResponse "Meal is still referenced"
// @Router /api/meals/{mealId} [delete]
// @Security XUserId
func (h *Handler) DeleteMeal(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	vars := mux.Vars(r)

	mealId, err := strconv.Atoi(vars["mealId"])
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Invalid meal ID"})
		return
	}

	err = h.service.Delete(r.Context(), mealId)
	if err != nil {
		if errors.Is(err, ErrMealNotFound) {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(rest.ErrorResponse{Error: err.Error()})
			return
		}
		if errors.Is(err, ErrMealInUse) {
			w.WriteHeader(http.StatusConflict)
			json.NewEncoder(w).Encode(rest.ErrorResponse{Error: err.Error()})
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func MealToDTO(m Meal) MealDTO {
	return MealDTO{Id: m.Id, Name: m.Name, Description: m.Description}
}
