package chat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"autofilter-bot/internal/app"
	"autofilter-bot/internal/model"
	"autofilter-bot/internal/repository"
	"autofilter-bot/internal/search"
	"autofilter-bot/internal/session"
)

type fakeMessenger struct {
	sent      []string
	keyboards [][][]Button
	edits     []string
	answers   []string
	filesSent []string
	deleted   int
}

func (f *fakeMessenger) SendMessage(_ context.Context, _ int64, text string) (int64, error) {
	f.sent = append(f.sent, text)
	return int64(len(f.sent)), nil
}

func (f *fakeMessenger) SendMessageWithButtons(_ context.Context, _ int64, text string, rows [][]Button) (int64, error) {
	f.sent = append(f.sent, text)
	f.keyboards = append(f.keyboards, rows)
	return int64(len(f.sent)), nil
}

func (f *fakeMessenger) EditMessage(_ context.Context, _, _ int64, text string, rows [][]Button) error {
	f.edits = append(f.edits, text)
	f.keyboards = append(f.keyboards, rows)
	return nil
}

func (f *fakeMessenger) SendFile(_ context.Context, _ int64, fileID, _ string) error {
	f.filesSent = append(f.filesSent, fileID)
	return nil
}

func (f *fakeMessenger) AnswerCallback(_ context.Context, _ string, text string, _ bool) error {
	f.answers = append(f.answers, text)
	return nil
}

func (f *fakeMessenger) DeleteMessage(_ context.Context, _, _ int64) error {
	f.deleted++
	return nil
}

type fakeSearcher struct {
	res   search.Result
	calls []string
}

func (f *fakeSearcher) Search(_ context.Context, rawQuery string, _, offset int, _ string, selector model.Tier) search.Result {
	f.calls = append(f.calls, string(selector)+"|"+rawQuery)
	_ = offset
	return f.res
}

type fakeGate struct{ active bool }

func (f *fakeGate) IsActive(context.Context, int64) (bool, error) { return f.active, nil }

type fakeResolver struct{ rec *model.FileRecord }

func (f *fakeResolver) Details(context.Context, string) (*model.FileRecord, error) {
	return f.rec, nil
}

type fakeRegistry struct{ banned bool }

func (f *fakeRegistry) EnsureUser(context.Context, int64, string) (bool, error) { return false, nil }
func (f *fakeRegistry) IsBanned(context.Context, int64) (bool, error)           { return f.banned, nil }

type fakeIndexer struct{ saved []*model.FileRecord }

func (f *fakeIndexer) Save(_ context.Context, rec *model.FileRecord, _ model.Tier) (repository.SaveStatus, error) {
	for _, existing := range f.saved {
		if existing.ID == rec.ID {
			return repository.StatusDuplicate, nil
		}
	}
	f.saved = append(f.saved, rec)
	return repository.StatusSaved, nil
}

type fakeChatRegistry struct{ ensured []int64 }

func (f *fakeChatRegistry) EnsureChat(_ context.Context, id int64, _ string) (bool, error) {
	f.ensured = append(f.ensured, id)
	return true, nil
}

type fakePlans struct {
	rec      *model.PremiumRecord
	trialErr error
}

func (f *fakePlans) Plan(_ context.Context, userID int64) (*model.PremiumRecord, error) {
	if f.rec != nil {
		return f.rec, nil
	}
	return &model.PremiumRecord{UserID: userID}, nil
}

func (f *fakePlans) ActivateTrial(_ context.Context, userID int64) (*model.PremiumRecord, error) {
	if f.trialErr != nil {
		return nil, f.trialErr
	}
	expire := time.Now().Add(time.Hour)
	return &model.PremiumRecord{UserID: userID, Premium: true, Trial: true, Plan: "1 hour trial", Expire: &expire}, nil
}

func fixture() (h *Handler, m *fakeMessenger, eng *fakeSearcher, store session.Store, gate *fakeGate, reg *fakeRegistry) {
	m = &fakeMessenger{}
	eng = &fakeSearcher{res: search.Result{
		Files:      []model.FileRecord{{ID: "f1", FileName: "movie.mkv", FileSize: 100}},
		Total:      25,
		NextOffset: 10,
		HasMore:    true,
	}}
	store = session.NewMemoryStore(16, time.Minute)
	gate = &fakeGate{active: true}
	reg = &fakeRegistry{}
	h = NewHandler(m, eng, store, gate, &fakePlans{}, &fakeResolver{}, &fakeIndexer{}, reg, &fakeChatRegistry{}, 10, zap.NewNop())
	return
}

func TestHandleTextRendersResults(t *testing.T) {
	h, m, eng, store, _, _ := fixture()
	ctx := context.Background()

	ev := TextEvent{ChatID: 100, MessageID: 7, FromUserID: 42, Text: "avengers"}
	require.NoError(t, h.HandleText(ctx, ev))

	require.Len(t, eng.calls, 1)
	assert.Equal(t, "all|avengers", eng.calls[0], "fresh searches cascade over every tier")

	st, found, err := store.Get(ctx, session.Key(100, 7))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "avengers", st.Query)
	assert.Equal(t, model.TierAll, st.Tier)

	require.Len(t, m.keyboards, 1)
	assert.Equal(t, FileCallback("f1"), m.keyboards[0][0][0].Data)
}

func TestHandleTextPremiumRequired(t *testing.T) {
	h, m, eng, _, gate, _ := fixture()
	gate.active = false

	require.NoError(t, h.HandleText(context.Background(), TextEvent{ChatID: 1, MessageID: 2, FromUserID: 42, Text: "avengers"}))
	assert.Empty(t, eng.calls)
	require.Len(t, m.sent, 1)
	assert.Contains(t, m.sent[0], "premium")
}

func TestHandleTextBannedUserIgnored(t *testing.T) {
	h, m, eng, _, _, reg := fixture()
	reg.banned = true

	require.NoError(t, h.HandleText(context.Background(), TextEvent{ChatID: 1, MessageID: 2, FromUserID: 42, Text: "avengers"}))
	assert.Empty(t, eng.calls)
	assert.Empty(t, m.sent)
}

func TestHandleTextNoResults(t *testing.T) {
	h, m, eng, store, _, _ := fixture()
	eng.res = search.Result{}

	require.NoError(t, h.HandleText(context.Background(), TextEvent{ChatID: 1, MessageID: 2, FromUserID: 42, Text: "zzz"}))
	require.Len(t, m.sent, 1)
	assert.Equal(t, msgNotFound, m.sent[0])

	_, found, err := store.Get(context.Background(), session.Key(1, 2))
	require.NoError(t, err)
	assert.False(t, found, "empty searches leave no session behind")
}

func TestHandleTextRegistersGroupChat(t *testing.T) {
	h, _, _, _, _, _ := fixture()
	chats := &fakeChatRegistry{}
	h.chats = chats

	require.NoError(t, h.HandleText(context.Background(), TextEvent{ChatID: -100987, ChatTitle: "movies", MessageID: 2, FromUserID: 42, Text: "avengers"}))
	assert.Equal(t, []int64{-100987}, chats.ensured)
}

func TestPlanCommandWithoutPlan(t *testing.T) {
	h, m, eng, _, _, _ := fixture()

	require.NoError(t, h.HandleText(context.Background(), TextEvent{ChatID: 1, MessageID: 2, FromUserID: 42, Text: "/plan"}))
	assert.Empty(t, eng.calls, "commands never hit the search engine")
	require.Len(t, m.sent, 1)
	assert.Contains(t, m.sent[0], "no active plan")
}

func TestPlanCommandWithActivePlan(t *testing.T) {
	h, m, _, _, _, _ := fixture()
	expire := time.Now().Add(48 * time.Hour)
	h.plans = &fakePlans{rec: &model.PremiumRecord{UserID: 42, Premium: true, Plan: "30 days", Expire: &expire}}

	require.NoError(t, h.HandleText(context.Background(), TextEvent{ChatID: 1, MessageID: 2, FromUserID: 42, Text: "/plan"}))
	require.Len(t, m.sent, 1)
	assert.Contains(t, m.sent[0], "30 days")
	assert.Contains(t, m.sent[0], "Time left")
}

func TestTrialCommand(t *testing.T) {
	h, m, _, _, _, _ := fixture()

	require.NoError(t, h.HandleText(context.Background(), TextEvent{ChatID: 1, MessageID: 2, FromUserID: 42, Text: "/trial"}))
	require.Len(t, m.sent, 1)
	assert.Contains(t, m.sent[0], "Trial activated")
}

func TestTrialCommandAlreadyUsed(t *testing.T) {
	h, m, _, _, _, _ := fixture()
	h.plans = &fakePlans{trialErr: app.ErrTrialUsed}

	require.NoError(t, h.HandleText(context.Background(), TextEvent{ChatID: 1, MessageID: 2, FromUserID: 42, Text: "/trial"}))
	require.Len(t, m.sent, 1)
	assert.Contains(t, m.sent[0], "already used")
}

func TestUnknownCommandIgnored(t *testing.T) {
	h, m, eng, _, _, _ := fixture()

	require.NoError(t, h.HandleText(context.Background(), TextEvent{ChatID: 1, MessageID: 2, FromUserID: 42, Text: "/settings foo"}))
	assert.Empty(t, eng.calls)
	assert.Empty(t, m.sent)
}

func TestCallbackExpiredSession(t *testing.T) {
	h, m, eng, _, _, _ := fixture()

	data := NavCallback{Action: ActionNext, RequesterID: 42, SessionKey: "1-2", Offset: 10}.Encode()
	require.NoError(t, h.HandleCallback(context.Background(), CallbackEvent{ID: "cb", FromUserID: 42, ChatID: 1, MessageID: 3, Data: data}))

	assert.Empty(t, eng.calls, "expired session performs no store query")
	require.Len(t, m.answers, 1)
	assert.Equal(t, msgSearchExpired, m.answers[0])
}

func TestCallbackWrongRequester(t *testing.T) {
	h, m, eng, store, _, _ := fixture()
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "1-2", session.State{Query: "avengers", Tier: model.TierAll}))

	data := NavCallback{Action: ActionNext, RequesterID: 42, SessionKey: "1-2", Offset: 10}.Encode()
	require.NoError(t, h.HandleCallback(ctx, CallbackEvent{ID: "cb", FromUserID: 777, ChatID: 1, MessageID: 3, Data: data}))

	assert.Empty(t, eng.calls)
	require.Len(t, m.answers, 1)
	assert.Equal(t, msgNotForYou, m.answers[0])
}

func TestCallbackNextPage(t *testing.T) {
	h, m, eng, store, _, _ := fixture()
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "1-2", session.State{Query: "avengers", Tier: model.TierAll}))

	data := NavCallback{Action: ActionNext, RequesterID: 42, SessionKey: "1-2", Offset: 10}.Encode()
	require.NoError(t, h.HandleCallback(ctx, CallbackEvent{ID: "cb", FromUserID: 42, ChatID: 1, MessageID: 3, Data: data}))

	require.Len(t, eng.calls, 1)
	assert.Equal(t, "all|avengers", eng.calls[0])
	assert.Len(t, m.edits, 1)
}

func TestCallbackTierSwitchResetsOffset(t *testing.T) {
	h, _, eng, store, _, _ := fixture()
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "1-2", session.State{Query: "avengers", Tier: model.TierAll}))

	data := NavCallback{Action: ActionTier, RequesterID: 42, SessionKey: "1-2", Tier: model.TierArchive}.Encode()
	require.NoError(t, h.HandleCallback(ctx, CallbackEvent{ID: "cb", FromUserID: 42, ChatID: 1, MessageID: 3, Data: data}))

	require.Len(t, eng.calls, 1)
	assert.Equal(t, "archive|avengers", eng.calls[0])

	st, found, err := store.Get(ctx, "1-2")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, model.TierArchive, st.Tier, "tier switch persists for later page turns")
}

func TestCallbackFileDelivery(t *testing.T) {
	h, m, _, _, _, _ := fixture()
	h.files = &fakeResolver{rec: &model.FileRecord{ID: "f1", FileName: "movie.mkv"}}

	require.NoError(t, h.HandleCallback(context.Background(), CallbackEvent{ID: "cb", FromUserID: 42, ChatID: 1, MessageID: 3, Data: FileCallback("f1")}))
	assert.Equal(t, []string{"f1"}, m.filesSent)
}

func TestCallbackFileGone(t *testing.T) {
	h, m, _, _, _, _ := fixture()

	require.NoError(t, h.HandleCallback(context.Background(), CallbackEvent{ID: "cb", FromUserID: 42, ChatID: 1, MessageID: 3, Data: FileCallback("missing")}))
	assert.Empty(t, m.filesSent)
	require.Len(t, m.answers, 1)
	assert.Equal(t, msgFileGone, m.answers[0])
}

func TestHandleMediaIndexesOnce(t *testing.T) {
	h, _, _, _, _, _ := fixture()
	indexer := &fakeIndexer{}
	h.indexer = indexer

	ev := MediaEvent{ChatID: -100987, FileID: "f1", FileName: "movie.mkv", FileSize: 100}
	require.NoError(t, h.HandleMedia(context.Background(), ev))
	require.NoError(t, h.HandleMedia(context.Background(), ev), "re-posting the same file is not an error")
	assert.Len(t, indexer.saved, 1)

	require.NoError(t, h.HandleMedia(context.Background(), MediaEvent{ChatID: -100987, FileID: "", FileName: "x"}))
	assert.Len(t, indexer.saved, 1, "media without a file id is skipped")
}

func TestCallbackClose(t *testing.T) {
	h, m, _, _, _, _ := fixture()

	require.NoError(t, h.HandleCallback(context.Background(), CallbackEvent{ID: "cb", FromUserID: 42, ChatID: 1, MessageID: 3, Data: ActionClose}))
	assert.Equal(t, 1, m.deleted)
}
