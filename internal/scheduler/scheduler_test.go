package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diet-agent/internal/models"
)

var testDay = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

type fakeCoach struct {
	users    []*models.Profile
	plans    map[string]*models.MealPlan
	progress map[string]models.DailyProgress
	settings map[string]models.Settings
	failFor  string
	panicFor string
}

func (f *fakeCoach) check(p *models.Profile) error {
	if p.ID == f.panicFor {
		panic("boom")
	}
	if p.ID == f.failFor {
		return errors.New("store unavailable")
	}
	return nil
}

func (f *fakeCoach) NotifiableUsers(context.Context) ([]*models.Profile, error) {
	return f.users, nil
}

func (f *fakeCoach) Settings(_ context.Context, p *models.Profile) (models.Settings, error) {
	return f.settings[p.ID], f.check(p)
}

func (f *fakeCoach) TodayPlan(_ context.Context, p *models.Profile) (*models.MealPlan, error) {
	if err := f.check(p); err != nil {
		return nil, err
	}
	if plan, ok := f.plans[p.ID]; ok {
		return plan, nil
	}
	return models.NewMealPlan(p.ID, testDay, models.PlanData{
		Lunch: &models.Meal{Name: "Generated Bowl", Calories: 500},
	}), nil
}

func (f *fakeCoach) StoredPlan(_ context.Context, p *models.Profile) (*models.MealPlan, error) {
	return f.plans[p.ID], f.check(p)
}

func (f *fakeCoach) DailyProgress(_ context.Context, p *models.Profile) (models.DailyProgress, error) {
	return f.progress[p.ID], f.check(p)
}

func (f *fakeCoach) WeeklyReport(_ context.Context, p *models.Profile) (*models.WeeklyReport, error) {
	if err := f.check(p); err != nil {
		return nil, err
	}
	return &models.WeeklyReport{StartDate: "2024-02-26", EndDate: "2024-03-03", TotalDays: 7}, nil
}

type sent struct {
	chatID int64
	text   string
}

type recorder struct {
	mu   sync.Mutex
	msgs []sent
}

func (r *recorder) Send(_ context.Context, chatID int64, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, sent{chatID, text})
	return nil
}

func (r *recorder) chats() []int64 {
	var ids []int64
	for _, m := range r.msgs {
		ids = append(ids, m.chatID)
	}
	return ids
}

func users(n int) []*models.Profile {
	var out []*models.Profile
	for i := 1; i <= n; i++ {
		out = append(out, &models.Profile{ID: string(rune('a' + i - 1)), TelegramID: int64(i), Name: "User"})
	}
	return out
}

func newTest(c *fakeCoach) (*Scheduler, *recorder) {
	rec := &recorder{}
	return New(c, rec, Config{}, nil, nil), rec
}

func TestMorningPlansIsolateFailures(t *testing.T) {
	c := &fakeCoach{users: users(3), failFor: "a", panicFor: "b"}
	s, rec := newTest(c)

	s.SendMorningPlans(context.Background())
	assert.Equal(t, []int64{3}, rec.chats())
	assert.Contains(t, rec.msgs[0].text, "Generated Bowl")
	assert.Contains(t, rec.msgs[0].text, "Good morning, User!")
}

func TestEveningAndWeekly(t *testing.T) {
	c := &fakeCoach{
		users:    users(2),
		progress: map[string]models.DailyProgress{"a": {CaloriesTarget: 2000, OnTrack: true}},
	}
	s, rec := newTest(c)

	s.SendEveningSummaries(context.Background())
	require.Len(t, rec.msgs, 2)
	assert.Contains(t, rec.msgs[0].text, "Great job staying on track today!")
	assert.Contains(t, rec.msgs[1].text, "Don't forget to log your meals!")

	s.SendWeeklyReports(context.Background())
	require.Len(t, rec.msgs, 4)
	assert.Contains(t, rec.msgs[2].text, "<b>Your Weekly Report</b>")
}

func TestMealRemindersNeedStoredSlot(t *testing.T) {
	day := testDay
	c := &fakeCoach{
		users: users(3),
		plans: map[string]*models.MealPlan{
			"a": models.NewMealPlan("a", day, models.PlanData{Lunch: &models.Meal{Name: "Dal", Calories: 450}}),
			"b": models.NewMealPlan("b", day, models.PlanData{Dinner: &models.Meal{Name: "Soup", Calories: 300}}),
		},
	}
	s, rec := newTest(c)

	s.SendMealReminders(context.Background(), "lunch")
	require.Equal(t, []int64{1}, rec.chats())
	assert.Contains(t, rec.msgs[0].text, "Time for lunch!")
	assert.Contains(t, rec.msgs[0].text, "<b>Dal</b>\n450 cal")
}

func TestWaterReminders(t *testing.T) {
	c := &fakeCoach{
		users: users(3),
		settings: map[string]models.Settings{
			"a": {EnableWaterReminders: true},
			"b": {EnableWaterReminders: true},
		},
		progress: map[string]models.DailyProgress{
			"a": {WaterML: 1000},
			"b": {WaterML: 2600},
		},
	}
	s, rec := newTest(c)

	s.SendWaterReminders(context.Background())
	require.Equal(t, []int64{1}, rec.chats())
	assert.Contains(t, rec.msgs[0].text, "6 more glasses")
}

func TestSpecs(t *testing.T) {
	spec, err := dailySpec("07:30", "*")
	require.NoError(t, err)
	assert.Equal(t, "0 30 7 * * *", spec)

	spec, err = dailySpec("09:00", "0")
	require.NoError(t, err)
	assert.Equal(t, "0 0 9 * * 0", spec)

	_, err = dailySpec("7am", "*")
	assert.Error(t, err)

	assert.Equal(t, "0 30 8-20/2 * * *", waterSpec(0))
	assert.Equal(t, "0 30 8-20/3 * * *", waterSpec(3))
}

func TestRegister(t *testing.T) {
	cfg := Config{
		MorningPlanTime:    "07:00",
		EveningSummaryTime: "20:00",
		WeeklyReportTime:   "09:00",
		MealReminderTimes:  []string{"08:00", "12:00", "18:00"},
	}
	s := New(&fakeCoach{}, &recorder{}, cfg, nil, nil)
	require.NoError(t, s.Register())
	assert.Len(t, s.cron.Entries(), 6)

	cfg.EnableWaterReminders = true
	s = New(&fakeCoach{}, &recorder{}, cfg, nil, nil)
	require.NoError(t, s.Register())
	assert.Len(t, s.cron.Entries(), 7)

	cfg.MorningPlanTime = "late"
	s = New(&fakeCoach{}, &recorder{}, cfg, nil, nil)
	assert.Error(t, s.Register())
}

func TestRunStopsWithContext(t *testing.T) {
	s := New(&fakeCoach{}, &recorder{}, Config{}, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, s.Run(ctx))
}
