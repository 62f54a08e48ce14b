package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"diet-agent/internal/coach"
	"diet-agent/internal/models"
)

type waterSyncRequest struct {
	TelegramID int64      `json:"telegram_id"`
	AmountML   int        `json:"amount_ml"`
	Timestamp  *time.Time `json:"timestamp,omitempty"`
}

type weightSyncRequest struct {
	TelegramID int64      `json:"telegram_id"`
	WeightKg   float64    `json:"weight_kg"`
	Timestamp  *time.Time `json:"timestamp,omitempty"`
}

type foodSyncRequest struct {
	TelegramID      int64      `json:"telegram_id"`
	FoodDescription string     `json:"food_description"`
	Calories        int        `json:"calories"`
	Protein         int        `json:"protein"`
	Carbs           int        `json:"carbs"`
	Fat             int        `json:"fat"`
	MealType        string     `json:"meal_type"`
	Timestamp       *time.Time `json:"timestamp,omitempty"`
}

type syncResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	DailyTotal *int   `json:"daily_total,omitempty"`
}

func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err)
	}
	return nil
}

func (s *DietServer) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	if status == http.StatusInternalServerError {
		s.log.Error("Request failed", "path", r.URL.Path, "error", err)
		writeError(w, status, code, "internal error")
		return
	}
	writeError(w, status, code, err.Error())
}

func (s *DietServer) handleSyncWater(w http.ResponseWriter, r *http.Request) {
	var req waterSyncRequest
	if err := decodeBody(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.AmountML <= 0 {
		s.fail(w, r, fmt.Errorf("%w: amount_ml must be positive", errBadRequest))
		return
	}
	p, err := s.coach.User(r.Context(), req.TelegramID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.coach.LogWater(r.Context(), p, req.AmountML, req.Timestamp)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, syncResponse{
		Success:    true,
		Message:    fmt.Sprintf("Logged %dml of water", res.AmountML),
		DailyTotal: &res.TotalML,
	})
}

func (s *DietServer) handleSyncWeight(w http.ResponseWriter, r *http.Request) {
	var req weightSyncRequest
	if err := decodeBody(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	p, err := s.coach.User(r.Context(), req.TelegramID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.coach.LogWeight(r.Context(), p, req.WeightKg, req.Timestamp)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, syncResponse{
		Success: true,
		Message: fmt.Sprintf("Logged weight: %gkg", res.WeightKg),
	})
}

func (s *DietServer) handleSyncFood(w http.ResponseWriter, r *http.Request) {
	var req foodSyncRequest
	if err := decodeBody(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if strings.TrimSpace(req.FoodDescription) == "" {
		s.fail(w, r, fmt.Errorf("%w: food_description is required", errBadRequest))
		return
	}
	n := models.Nutrition{Calories: req.Calories, Protein: req.Protein, Carbs: req.Carbs, Fat: req.Fat}
	if !n.Valid() {
		s.fail(w, r, fmt.Errorf("%w: nutrition values must not be negative", errBadRequest))
		return
	}
	p, err := s.coach.User(r.Context(), req.TelegramID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.coach.LogFoodEntry(r.Context(), p, coach.FoodEntry{
		Description: req.FoodDescription,
		MealType:    req.MealType,
		Nutrition:   n,
		LoggedAt:    req.Timestamp,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, syncResponse{
		Success:    true,
		Message:    "Logged: " + res.Log.Description,
		DailyTotal: &res.Totals.Calories,
	})
}

func (s *DietServer) handleStats(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["telegram_id"], 10, 64)
	if err != nil {
		s.fail(w, r, fmt.Errorf("%w: invalid telegram_id", errBadRequest))
		return
	}
	p, err := s.coach.User(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	stats, err := s.coach.Stats(r.Context(), p)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
