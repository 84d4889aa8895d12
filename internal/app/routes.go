package app

import (
	"github.com/cantine/cantine/internal/config"
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Holidays
	r.HandleFunc("/api/holidays", deps.HolidayHandler.ListHolidays).Methods("GET")
	r.HandleFunc("/api/holidays", requireAdmin(deps.HolidayHandler.CreateHoliday)).Methods("POST")
	r.HandleFunc("/api/holidays/import", requireAdmin(deps.HolidayHandler.ImportNational)).Methods("POST")
	r.HandleFunc("/api/holidays/{holidayId}", requireAdmin(deps.HolidayHandler.DeleteHoliday)).Methods("DELETE")

	// Meal catalog
	r.HandleFunc("/api/meals", deps.MealHandler.ListMeals).Methods("GET")
	r.HandleFunc("/api/meals", requireAdmin(deps.MealHandler.CreateMeal)).Methods("POST")
	r.HandleFunc("/api/meals/{mealId}", requireAdmin(deps.MealHandler.UpdateMeal)).Methods("PUT")
	r.HandleFunc("/api/meals/{mealId}", requireAdmin(deps.MealHandler.DeleteMeal)).Methods("DELETE")

	// Weekly schedule
	r.HandleFunc("/api/weekly-meals", deps.ScheduleHandler.GetWeek).Methods("GET")
	r.HandleFunc("/api/weekly-meals/{dayName}/meals", requireAdmin(deps.ScheduleHandler.AddMeal)).Methods("POST")
	r.HandleFunc("/api/weekly-meals/{dayName}/meals/{mealId}", requireAdmin(deps.ScheduleHandler.ReplaceMeal)).Methods("PUT")
	r.HandleFunc("/api/weekly-meals/{dayName}/meals/{mealId}", requireAdmin(deps.ScheduleHandler.RemoveMeal)).Methods("DELETE")

	// Selections
	r.HandleFunc("/api/selections", deps.SelectionHandler.ListSelections).Methods("GET")
	r.HandleFunc("/api/selections", deps.SelectionHandler.SelectMeal).Methods("POST")
	r.HandleFunc("/api/selections/week", requireAdmin(deps.SelectionHandler.ListWeekSelections)).Methods("GET")
	r.HandleFunc("/api/selections/export", requireAdmin(deps.SelectionHandler.ExportWeekSelections)).Methods("GET")
	r.HandleFunc("/api/selections/{dayName}", deps.SelectionHandler.UnselectMeal).Methods("DELETE")

	// User management
	r.HandleFunc("/api/users/signup", deps.UserHandler.Signup).Methods("POST")
	r.HandleFunc("/api/users/current", deps.UserHandler.CurrentUser).Methods("GET")
	r.HandleFunc("/api/users", requireAdmin(deps.UserHandler.ListUsers)).Methods("GET")
	r.HandleFunc("/api/users/pending", requireAdmin(deps.UserHandler.ListPendingUsers)).Methods("GET")
	r.HandleFunc("/api/users/{userId}/approve", requireAdmin(deps.UserHandler.ApproveUser)).Methods("POST")
	r.HandleFunc("/api/users/{userId}/reject", requireAdmin(deps.UserHandler.RejectUser)).Methods("POST")
	r.HandleFunc("/api/users/{userId}", requireAdmin(deps.UserHandler.UpdateUser)).Methods("PUT")
	r.HandleFunc("/api/users/{userId}", requireAdmin(deps.UserHandler.DeleteUser)).Methods("DELETE")
}
