package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"askbot/internal/domain"
	"askbot/internal/i18n"
	"askbot/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testAdminID int64 = 1000

type conversationFixture struct {
	users     *testutil.MockUserRepository
	states    *testutil.MockStateRepository
	messenger *testutil.MockMessenger
	searcher  *testutil.MockSearcher
	catalog   *i18n.Catalog
	service   *ConversationService
}

func newConversationFixture(t *testing.T) *conversationFixture {
	t.Helper()

	f := &conversationFixture{
		users:     new(testutil.MockUserRepository),
		states:    new(testutil.MockStateRepository),
		messenger: new(testutil.MockMessenger),
		searcher:  new(testutil.MockSearcher),
		catalog:   i18n.MustLoadEmbedded(),
	}
	logger := testutil.NewTestLogger()

	f.service = NewConversationService(
		NewUserService(f.users),
		f.states,
		NewAuthorizer(testAdminID),
		NewSearchService(f.searcher, logger),
		NewBroadcastService(f.users, f.messenger, 1, logger),
		f.messenger,
		f.catalog,
		logger,
	)
	return f
}

func (f *conversationFixture) assertExpectations(t *testing.T) {
	f.users.AssertExpectations(t)
	f.states.AssertExpectations(t)
	f.messenger.AssertExpectations(t)
	f.searcher.AssertExpectations(t)
}

func TestConversationService_Start(t *testing.T) {
	f := newConversationFixture(t)
	msg := testutil.NewTestMessage(123, "/start")

	f.messenger.On("Send", mock.Anything, domain.Outgoing{
		ChatID: 123,
		Text:   f.catalog.T(domain.LanguageEnglish, i18n.KeyWelcome),
		Keyboard: domain.Keyboard{Choices: []domain.Choice{
			{Label: "አማርኛ (Amharic)", Token: "am"},
			{Label: "ኦሮመኛ (Oromo)", Token: "om"},
			{Label: "English", Token: "en"},
		}},
	}).Return(nil).Once()

	err := f.service.Start(context.Background(), msg)

	require.NoError(t, err)
	f.states.AssertNotCalled(t, "SetState", mock.Anything, mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestConversationService_SelectLanguage(t *testing.T) {
	for _, lang := range domain.Languages() {
		t.Run(string(lang), func(t *testing.T) {
			f := newConversationFixture(t)
			msg := testutil.NewTestMessage(123, "")

			f.users.On("UpsertLanguage", mock.Anything, int64(123), "user123", lang).Return(nil).Once()
			f.states.On("SetState", mock.Anything, int64(123), domain.StateAwaitingContact).Return(nil).Once()
			f.messenger.On("Send", mock.Anything, domain.Outgoing{
				ChatID:   123,
				Text:     f.catalog.T(lang, i18n.KeyShareContact),
				Keyboard: domain.Keyboard{RequestContact: f.catalog.T(lang, i18n.KeyContactButton)},
			}).Return(nil).Once()

			reply, err := f.service.SelectLanguage(context.Background(), msg, string(lang))

			require.NoError(t, err)
			assert.False(t, reply.Alert)
			f.assertExpectations(t)
		})
	}
}

func TestConversationService_SelectLanguage_Repeated(t *testing.T) {
	f := newConversationFixture(t)
	msg := testutil.NewTestMessage(123, "")

	f.users.On("UpsertLanguage", mock.Anything, int64(123), "user123", domain.LanguageOromo).Return(nil).Twice()
	f.states.On("SetState", mock.Anything, int64(123), domain.StateAwaitingContact).Return(nil).Twice()
	f.messenger.On("Send", mock.Anything, mock.Anything).Return(nil).Twice()

	for i := 0; i < 2; i++ {
		_, err := f.service.SelectLanguage(context.Background(), msg, "om")
		require.NoError(t, err)
	}

	f.assertExpectations(t)
}

func TestConversationService_SelectLanguage_Invalid(t *testing.T) {
	f := newConversationFixture(t)
	msg := testutil.NewTestMessage(123, "")

	f.users.On("GetLanguage", mock.Anything, int64(123)).Return(domain.Language(""), false, nil)

	reply, err := f.service.SelectLanguage(context.Background(), msg, "fr")

	require.NoError(t, err)
	assert.True(t, reply.Alert)
	assert.Equal(t, f.catalog.T(domain.LanguageEnglish, i18n.KeyInvalidLanguage), reply.Text)
	f.users.AssertNotCalled(t, "UpsertLanguage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.states.AssertNotCalled(t, "SetState", mock.Anything, mock.Anything, mock.Anything)
	f.messenger.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestConversationService_SelectLanguage_StoreError(t *testing.T) {
	f := newConversationFixture(t)
	msg := testutil.NewTestMessage(123, "")

	f.users.On("UpsertLanguage", mock.Anything, int64(123), "user123", domain.LanguageEnglish).Return(fmt.Errorf("db error"))

	_, err := f.service.SelectLanguage(context.Background(), msg, "en")

	assert.Equal(t, ErrorInternal, CodeOf(err))
	f.states.AssertNotCalled(t, "SetState", mock.Anything, mock.Anything, mock.Anything)
}

func TestConversationService_Contact(t *testing.T) {
	f := newConversationFixture(t)
	msg := testutil.NewTestContact(123, "+251911000000")

	f.states.On("GetState", mock.Anything, int64(123)).Return(domain.StateAwaitingContact, nil)
	f.users.On("GetLanguage", mock.Anything, int64(123)).Return(domain.LanguageAmharic, true, nil)
	f.users.On("SetPhone", mock.Anything, int64(123), "+251911000000").Return(nil).Once()
	f.states.On("SetState", mock.Anything, int64(123), domain.StateIdle).Return(nil).Once()
	f.messenger.On("Send", mock.Anything, domain.Outgoing{
		ChatID:   123,
		Text:     f.catalog.T(domain.LanguageAmharic, i18n.KeyRegistered),
		Keyboard: domain.Keyboard{Remove: true},
	}).Return(nil).Once()

	err := f.service.HandleMessage(context.Background(), msg)

	require.NoError(t, err)
	f.assertExpectations(t)
}

func TestConversationService_Contact_NotRegistered(t *testing.T) {
	f := newConversationFixture(t)
	msg := testutil.NewTestContact(123, "+251911000000")

	f.states.On("GetState", mock.Anything, int64(123)).Return(domain.StateIdle, nil)
	f.users.On("GetLanguage", mock.Anything, int64(123)).Return(domain.Language(""), false, nil)
	f.users.On("SetPhone", mock.Anything, int64(123), "+251911000000").Return(domain.ErrUserNotFound)
	f.messenger.On("Send", mock.Anything, domain.Outgoing{
		ChatID: 123,
		Text:   f.catalog.T(domain.LanguageEnglish, i18n.KeyNotRegistered),
	}).Return(nil).Once()

	err := f.service.HandleMessage(context.Background(), msg)

	require.NoError(t, err)
	f.states.AssertNotCalled(t, "SetState", mock.Anything, mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestConversationService_Contact_OtherUser(t *testing.T) {
	f := newConversationFixture(t)
	msg := testutil.NewTestContact(123, "+251911000000")
	msg.Contact.UserID = 456

	f.states.On("GetState", mock.Anything, int64(123)).Return(domain.StateAwaitingContact, nil)
	f.users.On("GetLanguage", mock.Anything, int64(123)).Return(domain.LanguageOromo, true, nil)
	f.messenger.On("Send", mock.Anything, domain.Outgoing{
		ChatID:   123,
		Text:     f.catalog.T(domain.LanguageOromo, i18n.KeyShareContact),
		Keyboard: domain.Keyboard{RequestContact: f.catalog.T(domain.LanguageOromo, i18n.KeyContactButton)},
	}).Return(nil).Once()

	err := f.service.HandleMessage(context.Background(), msg)

	require.NoError(t, err)
	f.users.AssertNotCalled(t, "SetPhone", mock.Anything, mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestConversationService_BeginBroadcast_NonAdmin(t *testing.T) {
	f := newConversationFixture(t)
	msg := testutil.NewTestMessage(123, "/broadcast")

	f.users.On("GetLanguage", mock.Anything, int64(123)).Return(domain.LanguageEnglish, true, nil)
	f.messenger.On("Send", mock.Anything, domain.Outgoing{
		ChatID: 123,
		Text:   f.catalog.T(domain.LanguageEnglish, i18n.KeyAdminOnly),
	}).Return(nil).Once()

	err := f.service.BeginBroadcast(context.Background(), msg)

	require.NoError(t, err)
	f.states.AssertNotCalled(t, "SetState", mock.Anything, mock.Anything, mock.Anything)
	f.users.AssertNotCalled(t, "ListIDs", mock.Anything)
	f.messenger.AssertNotCalled(t, "Copy", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestConversationService_BeginBroadcast_Admin(t *testing.T) {
	f := newConversationFixture(t)
	msg := testutil.NewTestMessage(testAdminID, "/broadcast")

	f.users.On("GetLanguage", mock.Anything, testAdminID).Return(domain.LanguageEnglish, true, nil)
	f.states.On("SetState", mock.Anything, testAdminID, domain.StateBroadcasting).Return(nil).Once()
	f.messenger.On("Send", mock.Anything, domain.Outgoing{
		ChatID: testAdminID,
		Text:   f.catalog.T(domain.LanguageEnglish, i18n.KeyBroadcastStart),
	}).Return(nil).Once()

	err := f.service.BeginBroadcast(context.Background(), msg)

	require.NoError(t, err)
	f.assertExpectations(t)
}

func TestConversationService_Broadcasting(t *testing.T) {
	tests := []struct {
		name string
		msg  domain.Message
	}{
		{name: "text body", msg: testutil.NewTestMessage(testAdminID, "Hello everyone")},
		{name: "media body", msg: testutil.NewTestMessage(testAdminID, "")},
		{name: "unknown command body", msg: testutil.NewTestMessage(testAdminID, "/promo")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newConversationFixture(t)

			f.states.On("GetState", mock.Anything, testAdminID).Return(domain.StateBroadcasting, nil)
			f.users.On("ListIDs", mock.Anything).Return([]int64{1, 2, 3, testAdminID}, nil)
			f.messenger.On("Copy", mock.Anything, int64(1), testAdminID, 42).Return(nil).Once()
			f.messenger.On("Copy", mock.Anything, int64(2), testAdminID, 42).Return(fmt.Errorf("forbidden")).Once()
			f.messenger.On("Copy", mock.Anything, int64(3), testAdminID, 42).Return(nil).Once()
			f.messenger.On("Copy", mock.Anything, testAdminID, testAdminID, 42).Return(nil).Once()
			f.states.On("SetState", mock.Anything, testAdminID, domain.StateIdle).Return(nil).Once()
			f.users.On("GetLanguage", mock.Anything, testAdminID).Return(domain.LanguageEnglish, true, nil)
			f.messenger.On("Send", mock.Anything, domain.Outgoing{
				ChatID: testAdminID,
				Text:   "Broadcast completed! (Sent to 3 users)",
			}).Return(nil).Once()

			err := f.service.HandleMessage(context.Background(), tt.msg)

			require.NoError(t, err)
			f.searcher.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
			f.assertExpectations(t)
		})
	}
}

func TestConversationService_Broadcasting_NonAdminSearches(t *testing.T) {
	f := newConversationFixture(t)
	msg := testutil.NewTestMessage(123, "weather")

	f.states.On("GetState", mock.Anything, int64(123)).Return(domain.StateBroadcasting, nil)
	f.users.On("GetLanguage", mock.Anything, int64(123)).Return(domain.LanguageEnglish, true, nil)
	f.messenger.On("Send", mock.Anything, mock.Anything).Return(nil).Twice()
	f.searcher.On("Search", mock.Anything, "weather").Return([]domain.SearchResult{}, nil).Once()

	err := f.service.HandleMessage(context.Background(), msg)

	require.NoError(t, err)
	f.users.AssertNotCalled(t, "ListIDs", mock.Anything)
	f.assertExpectations(t)
}

func TestConversationService_Broadcasting_IdleBeforeDelivery(t *testing.T) {
	f := newConversationFixture(t)
	msg := testutil.NewTestMessage(testAdminID, "Hello everyone")

	var calls []string
	f.states.On("GetState", mock.Anything, testAdminID).Return(domain.StateBroadcasting, nil)
	f.states.On("SetState", mock.Anything, testAdminID, domain.StateIdle).
		Run(func(mock.Arguments) { calls = append(calls, "idle") }).
		Return(nil).Once()
	f.users.On("ListIDs", mock.Anything).Return([]int64{1, 2}, nil)
	f.messenger.On("Copy", mock.Anything, mock.Anything, testAdminID, 42).
		Run(func(args mock.Arguments) { calls = append(calls, fmt.Sprintf("copy %d", args.Get(1))) }).
		Return(nil).Twice()
	f.users.On("GetLanguage", mock.Anything, testAdminID).Return(domain.LanguageEnglish, true, nil)
	f.messenger.On("Send", mock.Anything, mock.Anything).Return(nil).Once()

	err := f.service.HandleMessage(context.Background(), msg)

	require.NoError(t, err)
	assert.Equal(t, []string{"idle", "copy 1", "copy 2"}, calls)
	f.assertExpectations(t)
}

func TestConversationService_Broadcasting_ListError(t *testing.T) {
	f := newConversationFixture(t)
	msg := testutil.NewTestMessage(testAdminID, "Hello everyone")

	var states []domain.ConversationState
	f.states.On("GetState", mock.Anything, testAdminID).Return(domain.StateBroadcasting, nil)
	f.states.On("SetState", mock.Anything, testAdminID, mock.Anything).
		Run(func(args mock.Arguments) { states = append(states, args.Get(2).(domain.ConversationState)) }).
		Return(nil).Twice()
	f.users.On("ListIDs", mock.Anything).Return(nil, fmt.Errorf("db error"))

	err := f.service.HandleMessage(context.Background(), msg)

	require.Error(t, err)
	assert.Equal(t, ErrorInternal, CodeOf(err))
	assert.Equal(t, []domain.ConversationState{domain.StateIdle, domain.StateBroadcasting}, states)
	f.messenger.AssertNotCalled(t, "Copy", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.messenger.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestConversationService_Search(t *testing.T) {
	tests := []struct {
		name        string
		mockResults []domain.SearchResult
		mockError   error
		expectHTML  bool
		expectCount int
	}{
		{
			name:        "seven results show five",
			mockResults: testutil.NewTestResults(7),
			expectHTML:  true,
			expectCount: 5,
		},
		{
			name:        "no results",
			mockResults: []domain.SearchResult{},
		},
		{
			name:      "backend error",
			mockError: fmt.Errorf("timeout"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newConversationFixture(t)
			msg := testutil.NewTestMessage(123, "golang generics")

			f.states.On("GetState", mock.Anything, int64(123)).Return(domain.StateIdle, nil)
			f.users.On("GetLanguage", mock.Anything, int64(123)).Return(domain.LanguageOromo, true, nil)
			f.searcher.On("Search", mock.Anything, "golang generics").Return(tt.mockResults, tt.mockError).Once()

			var sent []domain.Outgoing
			f.messenger.On("Send", mock.Anything, mock.Anything).
				Run(func(args mock.Arguments) { sent = append(sent, args.Get(1).(domain.Outgoing)) }).
				Return(nil)

			err := f.service.HandleMessage(context.Background(), msg)

			require.NoError(t, err)
			require.Len(t, sent, 2)
			assert.Equal(t, f.catalog.T(domain.LanguageOromo, i18n.KeySearching), sent[0].Text)

			if tt.expectHTML {
				assert.True(t, sent[1].HTML)
				assert.True(t, sent[1].LinkPreview)
				assert.Len(t, strings.Split(sent[1].Text, "\n\n"), tt.expectCount)
			} else {
				assert.Equal(t, f.catalog.T(domain.LanguageOromo, i18n.KeyNoResults), sent[1].Text)
				assert.False(t, sent[1].HTML)
			}
			f.assertExpectations(t)
		})
	}
}

func TestConversationService_MediaEcho(t *testing.T) {
	f := newConversationFixture(t)
	msg := testutil.NewTestMessage(123, "")

	f.states.On("GetState", mock.Anything, int64(123)).Return(domain.StateIdle, nil)
	f.messenger.On("Copy", mock.Anything, int64(123), int64(123), 42).Return(nil).Once()

	err := f.service.HandleMessage(context.Background(), msg)

	require.NoError(t, err)
	f.users.AssertNotCalled(t, "ListIDs", mock.Anything)
	f.assertExpectations(t)
}

func TestConversationService_UnknownCommandIgnored(t *testing.T) {
	f := newConversationFixture(t)
	msg := testutil.NewTestMessage(123, "/help")

	f.states.On("GetState", mock.Anything, int64(123)).Return(domain.StateIdle, nil)

	err := f.service.HandleMessage(context.Background(), msg)

	require.NoError(t, err)
	f.messenger.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	f.messenger.AssertNotCalled(t, "Copy", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.searcher.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}

func TestConversationService_StateError(t *testing.T) {
	f := newConversationFixture(t)
	msg := testutil.NewTestMessage(123, "hello")

	f.states.On("GetState", mock.Anything, int64(123)).Return(domain.ConversationState(""), fmt.Errorf("redis down"))

	err := f.service.HandleMessage(context.Background(), msg)

	assert.Equal(t, ErrorInternal, CodeOf(err))
}
