package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"

	"diet-agent/internal/coach"
	"diet-agent/internal/format"
	"diet-agent/internal/models"
	"diet-agent/internal/nutrition"
	"diet-agent/internal/tracker"
)

type toolHandler func(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error)

type tool struct {
	description string
	handler     toolHandler
}

type userParams struct {
	TelegramID int64 `json:"telegram_id" description:"Chat id of the user"`
}

type startParams struct {
	TelegramID int64  `json:"telegram_id"`
	Username   string `json:"username,omitempty"`
	Name       string `json:"name,omitempty"`
}

type updateProfileParams struct {
	TelegramID int64 `json:"telegram_id"`
	models.ProfileUpdate
}

type updateSettingsParams struct {
	TelegramID int64 `json:"telegram_id"`
	coach.SettingsUpdate
}

type planParams struct {
	TelegramID int64 `json:"telegram_id"`
	Regenerate bool  `json:"regenerate,omitempty" description:"Replace today's plan with a new one"`
}

type logFoodParams struct {
	TelegramID  int64  `json:"telegram_id"`
	Description string `json:"description" description:"What was eaten, in free text"`
}

type quickLogParams struct {
	TelegramID int64  `json:"telegram_id"`
	Item       string `json:"item" description:"Quick-log preset key"`
}

type estimateParams struct {
	Description string `json:"description" description:"Food to estimate, in free text"`
}

type waterParams struct {
	TelegramID int64 `json:"telegram_id"`
	AmountML   int   `json:"amount_ml,omitempty" description:"Amount in ml (defaults to one 250ml glass)"`
}

type weightParams struct {
	TelegramID int64   `json:"telegram_id"`
	WeightKg   float64 `json:"weight_kg" description:"Body weight in kg"`
}

// extractParams decodes the request arguments into target.
func extractParams(req *protocol.CallToolRequest, target interface{}) error {
	jsonBytes, err := json.Marshal(req.Arguments)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal arguments: %v", errBadRequest, err)
	}
	if err := json.Unmarshal(jsonBytes, target); err != nil {
		return fmt.Errorf("%w: invalid parameters: %v", errBadRequest, err)
	}
	return nil
}

func (s *DietServer) registerTools() {
	s.tools = map[string]tool{
		"start":               {"Register the user, or welcome them back", s.handleStart},
		"help":                {"List the available commands", s.handleHelp},
		"update_profile":      {"Update profile fields; targets are recomputed from body metrics", s.handleUpdateProfile},
		"recalculate_targets": {"Recompute calorie and macro targets from the profile", s.handleRecalculate},
		"get_goals":           {"Show the goal and daily targets", s.handleGoals},
		"get_plan":            {"Get today's meal plan, generating it if needed", s.handlePlan},
		"log_food":            {"Log a meal described in free text", s.handleLogFood},
		"quick_log":           {"Log a common food from the preset list", s.handleQuickLog},
		"estimate_nutrition":  {"Estimate nutrition for a food without logging it", s.handleEstimate},
		"log_water":           {"Log water intake", s.handleLogWater},
		"log_weight":          {"Log body weight", s.handleLogWeight},
		"weight_history":      {"Show the last week of weigh-ins", s.handleWeightHistory},
		"suggest_meal":        {"Suggest a meal for the current time of day", s.handleSuggest},
		"suggest_snack":       {"Suggest a snack sized to the calories left", s.handleSnack},
		"daily_summary":       {"Summarize today's intake against targets", s.handleDailySummary},
		"weekly_report":       {"Report the last seven days with recommendations", s.handleWeeklyReport},
		"get_stats":           {"Today's numbers as JSON", s.handleGetStats},
		"foods_to_avoid":      {"List foods that conflict with the user's restrictions", s.handleFoodsToAvoid},
		"get_settings":        {"Show notification and provider settings", s.handleGetSettings},
		"update_settings":     {"Change notification and provider settings", s.handleUpdateSettings},
	}
	s.log.Debug("Tools registered", "count", len(s.tools))
}

type toolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *DietServer) handleListTools(w http.ResponseWriter, r *http.Request) {
	list := make([]toolInfo, 0, len(s.tools))
	for name, t := range s.tools {
		list = append(list, toolInfo{Name: name, Description: t.description})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	writeJSON(w, http.StatusOK, map[string]interface{}{"tools": list})
}

func (s *DietServer) handleToolCall(w http.ResponseWriter, r *http.Request) {
	var request protocol.CallToolRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return
	}

	t, ok := s.tools[request.Name]
	if !ok {
		http.Error(w, fmt.Sprintf("Unknown tool: %s", request.Name), http.StatusNotFound)
		return
	}

	result, err := t.handler(r.Context(), &request)
	if err != nil {
		result, err = s.userVisible(err)
	}
	if err != nil {
		status, _ := classify(err)
		if status == http.StatusInternalServerError {
			s.log.Error("Tool failed", "tool", request.Name, "error", err)
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		s.log.Error("Failed to encode response", "tool", request.Name, "error", err)
	}
}

// userVisible turns conditions the user can fix into normal replies.
func (s *DietServer) userVisible(err error) (*protocol.CallToolResult, error) {
	switch {
	case errors.Is(err, coach.ErrNotRegistered):
		return s.createTextResponse(format.CompleteProfile)
	case errors.Is(err, nutrition.ErrIncompleteProfile):
		return s.createTextResponse(format.MissingMetrics)
	}
	return nil, err
}

func (s *DietServer) createTextResponse(text string) (*protocol.CallToolResult, error) {
	return &protocol.CallToolResult{
		Content: []protocol.Content{
			protocol.TextContent{
				Type: "text",
				Text: text,
			},
		},
	}, nil
}

func (s *DietServer) createJSONResponse(data interface{}) (*protocol.CallToolResult, error) {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	return s.createTextResponse(string(jsonBytes))
}

// userFor decodes params, which must carry a telegram_id, and loads the
// user it names.
func (s *DietServer) userFor(ctx context.Context, req *protocol.CallToolRequest, params interface{}) (*models.Profile, error) {
	if err := extractParams(req, params); err != nil {
		return nil, err
	}
	var id userParams
	if err := extractParams(req, &id); err != nil {
		return nil, err
	}
	if id.TelegramID == 0 {
		return nil, fmt.Errorf("%w: telegram_id is required", errBadRequest)
	}
	return s.coach.User(ctx, id.TelegramID)
}

func (s *DietServer) handleStart(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params startParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	if params.TelegramID == 0 {
		return nil, fmt.Errorf("%w: telegram_id is required", errBadRequest)
	}
	p, _, err := s.coach.Register(ctx, params.TelegramID, params.Username, strings.TrimSpace(params.Name))
	if err != nil {
		return nil, err
	}
	return s.createTextResponse(format.Welcome(p))
}

func (s *DietServer) handleHelp(_ context.Context, _ *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	return s.createTextResponse(format.Help)
}

func (s *DietServer) handleUpdateProfile(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params updateProfileParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	p, err := s.coach.UpdateProfile(ctx, params.TelegramID, params.ProfileUpdate)
	if err != nil {
		return nil, err
	}
	return s.createTextResponse(format.Goals(p))
}

func (s *DietServer) handleRecalculate(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params userParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	targets, err := s.coach.RecalculateTargets(ctx, params.TelegramID)
	if err != nil {
		return nil, err
	}
	return s.createTextResponse(format.Targets("Targets recalculated!", targets))
}

func (s *DietServer) handleGoals(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	p, err := s.userFor(ctx, req, &userParams{})
	if err != nil {
		return nil, err
	}
	return s.createTextResponse(format.Goals(p))
}

func (s *DietServer) handlePlan(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params planParams
	p, err := s.userFor(ctx, req, &params)
	if err != nil {
		return nil, err
	}
	var plan *models.MealPlan
	if params.Regenerate {
		plan, err = s.coach.RegeneratePlan(ctx, p)
	} else {
		plan, err = s.coach.TodayPlan(ctx, p)
	}
	if err != nil {
		return nil, err
	}
	return s.createTextResponse(format.MealPlan(plan))
}

func (s *DietServer) handleLogFood(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params logFoodParams
	p, err := s.userFor(ctx, req, &params)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(params.Description) == "" {
		return s.createTextResponse("What did you eat? Example: /log 2 eggs and toast")
	}
	res, err := s.coach.LogFood(ctx, p, params.Description)
	if err != nil {
		return nil, err
	}
	return s.createTextResponse(format.FoodLogged(res.Log.Description, res.Log.Nutrition, res.Totals.Calories, res.Target))
}

func (s *DietServer) handleQuickLog(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params quickLogParams
	p, err := s.userFor(ctx, req, &params)
	if err != nil {
		return nil, err
	}
	if params.Item == "" {
		return s.createTextResponse("Quick log one of: " + strings.Join(coach.QuickItems(), ", "))
	}
	res, err := s.coach.QuickLog(ctx, p, params.Item)
	if err != nil {
		return nil, err
	}
	return s.createTextResponse(format.FoodLogged(res.Log.Description, res.Log.Nutrition, res.Totals.Calories, res.Target))
}

func (s *DietServer) handleEstimate(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params estimateParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	if strings.TrimSpace(params.Description) == "" {
		return nil, fmt.Errorf("%w: description is required", errBadRequest)
	}
	return s.createJSONResponse(s.coach.Estimate(ctx, nil, params.Description))
}

func (s *DietServer) handleLogWater(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params waterParams
	p, err := s.userFor(ctx, req, &params)
	if err != nil {
		return nil, err
	}
	res, err := s.coach.LogWater(ctx, p, params.AmountML, nil)
	if err != nil {
		return nil, err
	}
	return s.createTextResponse(format.WaterLogged(res.AmountML, res.TotalML, res.TargetML))
}

func (s *DietServer) handleLogWeight(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params weightParams
	p, err := s.userFor(ctx, req, &params)
	if err != nil {
		return nil, err
	}
	if params.WeightKg == 0 {
		return s.createTextResponse("Log your weight: /weight 70.5")
	}
	res, err := s.coach.LogWeight(ctx, p, params.WeightKg, nil)
	if err != nil {
		return nil, err
	}
	return s.createTextResponse(format.WeightLogged(res.WeightKg, res.Change))
}

func (s *DietServer) handleWeightHistory(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	p, err := s.userFor(ctx, req, &userParams{})
	if err != nil {
		return nil, err
	}
	history, err := s.coach.WeightHistory(ctx, p)
	if err != nil {
		return nil, err
	}
	return s.createTextResponse(format.WeightHistory(history, tracker.WeightChange(history)))
}

func (s *DietServer) handleSuggest(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	p, err := s.userFor(ctx, req, &userParams{})
	if err != nil {
		return nil, err
	}
	meal, _, err := s.coach.Suggest(ctx, p)
	if err != nil {
		return nil, err
	}
	return s.createTextResponse(format.Suggestion(meal))
}

func (s *DietServer) handleSnack(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	p, err := s.userFor(ctx, req, &userParams{})
	if err != nil {
		return nil, err
	}
	meal, left, err := s.coach.Snack(ctx, p)
	if err != nil {
		return nil, err
	}
	return s.createTextResponse(format.Snack(meal, left))
}

func (s *DietServer) handleDailySummary(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	p, err := s.userFor(ctx, req, &userParams{})
	if err != nil {
		return nil, err
	}
	dp, err := s.coach.DailyProgress(ctx, p)
	if err != nil {
		return nil, err
	}
	return s.createTextResponse(format.DailySummary(dp))
}

func (s *DietServer) handleWeeklyReport(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	p, err := s.userFor(ctx, req, &userParams{})
	if err != nil {
		return nil, err
	}
	report, err := s.coach.WeeklyReport(ctx, p)
	if err != nil {
		return nil, err
	}
	return s.createTextResponse(format.WeeklyReport(report))
}

func (s *DietServer) handleGetStats(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	p, err := s.userFor(ctx, req, &userParams{})
	if err != nil {
		return nil, err
	}
	stats, err := s.coach.Stats(ctx, p)
	if err != nil {
		return nil, err
	}
	return s.createJSONResponse(stats)
}

func (s *DietServer) handleFoodsToAvoid(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	p, err := s.userFor(ctx, req, &userParams{})
	if err != nil {
		return nil, err
	}
	return s.createTextResponse(format.FoodsToAvoid(p.Restrictions, coach.FoodsToAvoid(p)))
}

func (s *DietServer) handleGetSettings(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	p, err := s.userFor(ctx, req, &userParams{})
	if err != nil {
		return nil, err
	}
	st, err := s.coach.Settings(ctx, p)
	if err != nil {
		return nil, err
	}
	return s.createTextResponse(format.Settings(st, p))
}

func (s *DietServer) handleUpdateSettings(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params updateSettingsParams
	p, err := s.userFor(ctx, req, &params)
	if err != nil {
		return nil, err
	}
	st, err := s.coach.UpdateSettings(ctx, p, params.SettingsUpdate)
	if err != nil {
		return nil, err
	}
	return s.createTextResponse(format.Settings(st, p))
}
