package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/edqorta/edqorta-backend/internal/domain"
	"github.com/edqorta/edqorta-backend/internal/repo"
	"github.com/edqorta/edqorta-backend/internal/services"
)

// ---------- test DB ----------

func newHandlersDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Unique DSN per call to avoid cross-test contamination
	dsn := fmt.Sprintf("file:handlers_%s?mode=memory&cache=shared", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.Exec("PRAGMA foreign_keys=ON;")
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// ---------- flexible stubs for the five service contracts ----------

type stubFeedSvc struct {
	createPost func(context.Context, string, services.PostInput) (*domain.Property, error)
	deletePost func(context.Context, string, string) error
	get        func(context.Context, string) (*domain.Property, error)
	listPage   func(context.Context, int, int) ([]domain.Property, int64, error)
}

func (s stubFeedSvc) CreatePost(ctx context.Context, listerID string, in services.PostInput) (*domain.Property, error) {
	if s.createPost != nil {
		return s.createPost(ctx, listerID, in)
	}
	return &domain.Property{ID: uuid.NewString(), ListerID: listerID, PostType: in.Type, Description: in.Description}, nil
}

func (s stubFeedSvc) DeletePost(ctx context.Context, id, userID string) error {
	if s.deletePost != nil {
		return s.deletePost(ctx, id, userID)
	}
	return nil
}

func (s stubFeedSvc) Get(ctx context.Context, id string) (*domain.Property, error) {
	if s.get != nil {
		return s.get(ctx, id)
	}
	return &domain.Property{ID: id, PostType: domain.PostTypeNormal}, nil
}

func (s stubFeedSvc) ListPage(ctx context.Context, page, pageSize int) ([]domain.Property, int64, error) {
	if s.listPage != nil {
		return s.listPage(ctx, page, pageSize)
	}
	return nil, 0, nil
}

type stubEngageSvc struct {
	toggleLike   func(context.Context, string, string) (*domain.Property, bool, error)
	toggleFollow func(context.Context, string, string) (*domain.User, bool, error)
	addComment   func(context.Context, string, string, string) (*domain.Comment, error)
	listComments func(context.Context, string, int, int) ([]domain.Comment, int64, error)
}

func (s stubEngageSvc) ToggleLike(ctx context.Context, propertyID, userID string) (*domain.Property, bool, error) {
	if s.toggleLike != nil {
		return s.toggleLike(ctx, propertyID, userID)
	}
	return &domain.Property{ID: propertyID, Likes: 1}, true, nil
}

func (s stubEngageSvc) ToggleFollow(ctx context.Context, followerID, followeeID string) (*domain.User, bool, error) {
	if s.toggleFollow != nil {
		return s.toggleFollow(ctx, followerID, followeeID)
	}
	return &domain.User{ID: followeeID, FollowersCount: 1}, true, nil
}

func (s stubEngageSvc) AddComment(ctx context.Context, propertyID, userID, text string) (*domain.Comment, error) {
	if s.addComment != nil {
		return s.addComment(ctx, propertyID, userID, text)
	}
	return &domain.Comment{ID: uuid.NewString(), PropertyID: propertyID, UserID: userID, Text: text}, nil
}

func (s stubEngageSvc) ListComments(ctx context.Context, propertyID string, page, pageSize int) ([]domain.Comment, int64, error) {
	if s.listComments != nil {
		return s.listComments(ctx, propertyID, page, pageSize)
	}
	return nil, 0, nil
}

type stubMsgSvc struct {
	startConv  func(context.Context, string, []string, *string) (*domain.Conversation, error)
	send       func(context.Context, string, string, string) (*domain.Message, error)
	listMsgs   func(context.Context, string, string, int, int) ([]domain.Message, int64, error)
	createTeam func(context.Context, string, string, []string) (*domain.SearchTeam, error)
	share      func(context.Context, string, string, string) (*domain.SharedProperty, error)
	addNote    func(context.Context, string, string, string) (*domain.TeamComment, error)
	listNotes  func(context.Context, string, string, int, int) ([]domain.TeamComment, error)
}

func (s stubMsgSvc) StartConversation(ctx context.Context, creatorID string, participantIDs []string, propertyID *string) (*domain.Conversation, error) {
	if s.startConv != nil {
		return s.startConv(ctx, creatorID, participantIDs, propertyID)
	}
	return &domain.Conversation{ID: uuid.NewString(), PropertyID: propertyID}, nil
}

func (s stubMsgSvc) SendMessage(ctx context.Context, conversationID, senderID, text string) (*domain.Message, error) {
	if s.send != nil {
		return s.send(ctx, conversationID, senderID, text)
	}
	return &domain.Message{ID: uuid.NewString(), ConversationID: conversationID, SenderID: senderID, Text: text}, nil
}

func (s stubMsgSvc) ListMessagesPage(ctx context.Context, conversationID, userID string, page, pageSize int) ([]domain.Message, int64, error) {
	if s.listMsgs != nil {
		return s.listMsgs(ctx, conversationID, userID, page, pageSize)
	}
	return nil, 0, nil
}

func (s stubMsgSvc) CreateTeam(ctx context.Context, creatorID, name string, memberIDs []string) (*domain.SearchTeam, error) {
	if s.createTeam != nil {
		return s.createTeam(ctx, creatorID, name, memberIDs)
	}
	return &domain.SearchTeam{ID: uuid.NewString(), Name: name, CreatorID: creatorID}, nil
}

func (s stubMsgSvc) ShareProperty(ctx context.Context, teamID, propertyID, userID string) (*domain.SharedProperty, error) {
	if s.share != nil {
		return s.share(ctx, teamID, propertyID, userID)
	}
	return &domain.SharedProperty{ID: uuid.NewString(), TeamID: teamID, PropertyID: propertyID}, nil
}

func (s stubMsgSvc) AddTeamComment(ctx context.Context, sharedPropertyID, authorID, text string) (*domain.TeamComment, error) {
	if s.addNote != nil {
		return s.addNote(ctx, sharedPropertyID, authorID, text)
	}
	return &domain.TeamComment{ID: uuid.NewString(), SharedPropertyID: sharedPropertyID, AuthorID: authorID, Text: text}, nil
}

func (s stubMsgSvc) ListTeamComments(ctx context.Context, sharedPropertyID, userID string, page, pageSize int) ([]domain.TeamComment, error) {
	if s.listNotes != nil {
		return s.listNotes(ctx, sharedPropertyID, userID, page, pageSize)
	}
	return nil, nil
}

type stubProfSvc struct {
	get    func(context.Context, string) (*domain.User, error)
	update func(context.Context, string, services.ProfileUpdate) (*domain.User, error)
}

func (s stubProfSvc) Get(ctx context.Context, id string) (*domain.User, error) {
	if s.get != nil {
		return s.get(ctx, id)
	}
	return &domain.User{ID: id, Name: "Ada Obi", Username: "ada"}, nil
}

func (s stubProfSvc) Update(ctx context.Context, id string, in services.ProfileUpdate) (*domain.User, error) {
	if s.update != nil {
		return s.update(ctx, id, in)
	}
	return &domain.User{ID: id}, nil
}

type stubVerifySvc struct {
	submit   func(context.Context, services.ReportInput) (*domain.VerificationReport, error)
	complete func(context.Context, string, string) (*domain.Property, error)
	reports  func(context.Context, string) ([]domain.VerificationReport, error)
}

func (s stubVerifySvc) Submit(ctx context.Context, in services.ReportInput) (*domain.VerificationReport, error) {
	if s.submit != nil {
		return s.submit(ctx, in)
	}
	return &domain.VerificationReport{ID: uuid.NewString(), PropertyID: in.PropertyID, AgentID: in.AgentID}, nil
}

func (s stubVerifySvc) Complete(ctx context.Context, propertyID, verifierID string) (*domain.Property, error) {
	if s.complete != nil {
		return s.complete(ctx, propertyID, verifierID)
	}
	return &domain.Property{ID: propertyID, VerificationStatus: domain.VerificationVerified}, nil
}

func (s stubVerifySvc) Reports(ctx context.Context, propertyID string) ([]domain.VerificationReport, error) {
	if s.reports != nil {
		return s.reports(ctx, propertyID)
	}
	return nil, nil
}

// newStubHandlers wires default stubs; tests override the service they probe.
func newStubHandlers() *Handlers {
	return New(stubFeedSvc{}, stubEngageSvc{}, stubMsgSvc{}, stubProfSvc{}, stubVerifySvc{}, 0.4023)
}

// decodeErr unmarshals the standard error envelope.
func decodeErr(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var e ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil {
		t.Fatalf("decode error envelope: %v body=%s", err, w.Body.String())
	}
	return e
}

// ---------- helpers-only tests ----------

func Test_userID_and_clampPagination(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// userID helper
	rc := gin.CreateTestContextOnly(httptest.NewRecorder(), gin.New())
	if got := userID(rc); got != "demo-user" {
		t.Fatalf("fallback userID = %q", got)
	}
	rc.Set("userID", "u1")
	if got := userID(rc); got != "u1" {
		t.Fatalf("ctx userID = %q", got)
	}
	rc.Set("userID", 123) // wrong type → fallback
	if got := userID(rc); got != "demo-user" {
		t.Fatalf("wrong-type fallback userID = %q", got)
	}

	// header fallback
	cH, _ := gin.CreateTestContext(httptest.NewRecorder())
	reqH := httptest.NewRequest("GET", "/", nil)
	reqH.Header.Set("X-User-ID", "u-123")
	cH.Request = reqH
	if got := userID(cH); got != "u-123" {
		t.Fatalf("header fallback userID = %q", got)
	}

	// clampPagination bounds
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?page=-5&page_size=9999", nil)
	p, ps := clampPagination(c)
	if p != 1 || ps != 100 {
		t.Fatalf("clamp bounds got p=%d ps=%d", p, ps)
	}
	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?page=&page_size=0", nil)
	p, ps = clampPagination(c)
	if p != 1 || ps != 1 {
		t.Fatalf("clamp floor got p=%d ps=%d", p, ps)
	}
	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/", nil)
	p, ps = clampPagination(c)
	if p != 1 || ps != 20 {
		t.Fatalf("clamp defaults got p=%d ps=%d", p, ps)
	}
}

func Test_paginationFor(t *testing.T) {
	pg := paginationFor(2, 20, 45)
	if pg.TotalPages != 3 || !pg.HasNext {
		t.Fatalf("unexpected pagination: %+v", pg)
	}
	pg = paginationFor(3, 20, 45)
	if pg.HasNext {
		t.Fatalf("last page reports has_next: %+v", pg)
	}
	pg = paginationFor(1, 20, 0)
	if pg.TotalPages != 0 || pg.HasNext {
		t.Fatalf("empty set pagination: %+v", pg)
	}
}
