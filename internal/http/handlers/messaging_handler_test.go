package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/edqorta/edqorta-backend/internal/domain"
	"github.com/edqorta/edqorta-backend/internal/repo"
	"github.com/edqorta/edqorta-backend/internal/services"
)

// ---------- StartConversation ----------

func TestStartConversation_BindingAndSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newStubHandlers()
	r := gin.New()
	r.POST("/conversations", h.StartConversation)

	// Empty participant list fails binding -> 400
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/conversations", bytes.NewBufferString(`{"participant_ids":[]}`)))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty participants -> %d", w.Code)
	}

	// Success -> 201, property anchor passed through
	prop := uuid.NewString()
	var gotProp *string
	msg := stubMsgSvc{
		startConv: func(ctx context.Context, creatorID string, participantIDs []string, propertyID *string) (*domain.Conversation, error) {
			gotProp = propertyID
			return &domain.Conversation{ID: "conv-1", PropertyID: propertyID}, nil
		},
	}
	h2 := New(stubFeedSvc{}, stubEngageSvc{}, msg, stubProfSvc{}, stubVerifySvc{}, 0.4023)
	r2 := gin.New()
	r2.POST("/conversations", h2.StartConversation)
	w = httptest.NewRecorder()
	body := `{"participant_ids":["` + uuid.NewString() + `"],"property_id":"` + prop + `"}`
	req := httptest.NewRequest(http.MethodPost, "/conversations", bytes.NewBufferString(body))
	req.Header.Set("X-User-ID", "u1")
	r2.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("start -> %d body=%s", w.Code, w.Body.String())
	}
	if gotProp == nil || *gotProp != prop {
		t.Fatalf("property anchor not passed: %v", gotProp)
	}
}

// ---------- SendMessage ----------

func TestSendMessage_GuardsAndCreated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	conv := uuid.NewString()

	// Non-UUID conversation -> 400
	h := newStubHandlers()
	r := gin.New()
	r.POST("/conversations/:id/messages", h.SendMessage)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/conversations/nope/messages", bytes.NewBufferString(`{"text":"hi"}`)))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad id -> %d", w.Code)
	}

	// Non-member -> 404
	outsider := stubMsgSvc{
		send: func(ctx context.Context, conversationID, senderID, text string) (*domain.Message, error) {
			return nil, services.ErrConversationNotFound
		},
	}
	h2 := New(stubFeedSvc{}, stubEngageSvc{}, outsider, stubProfSvc{}, stubVerifySvc{}, 0.4023)
	r2 := gin.New()
	r2.POST("/conversations/:id/messages", h2.SendMessage)
	w = httptest.NewRecorder()
	r2.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/conversations/"+conv+"/messages", bytes.NewBufferString(`{"text":"hi"}`)))
	if w.Code != http.StatusNotFound {
		t.Fatalf("non-member -> %d", w.Code)
	}

	// Success -> 201 with sender from header
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/conversations/"+conv+"/messages", bytes.NewBufferString(`{"text":"are we viewing today?"}`))
	req.Header.Set("X-User-ID", "u1")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("send -> %d", w.Code)
	}
	var out domain.Message
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	if out.ConversationID != conv || out.SenderID != "u1" {
		t.Fatalf("unexpected message: %#v", out)
	}
}

// ---------- ListMessages ----------

func TestListMessages_PageShape(t *testing.T) {
	gin.SetMode(gin.TestMode)
	conv := uuid.NewString()
	msg := stubMsgSvc{
		listMsgs: func(ctx context.Context, conversationID, userID string, page, pageSize int) ([]domain.Message, int64, error) {
			return []domain.Message{{ID: "m1"}, {ID: "m2"}}, 2, nil
		},
	}
	h := New(stubFeedSvc{}, stubEngageSvc{}, msg, stubProfSvc{}, stubVerifySvc{}, 0.4023)
	r := gin.New()
	r.GET("/conversations/:id/messages", h.ListMessages)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/conversations/"+conv+"/messages", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("list -> %d", w.Code)
	}
	var out ListMessagesResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(out.Messages) != 2 || out.Pagination.Total != 2 || out.Pagination.HasNext {
		t.Fatalf("unexpected response: %+v", out)
	}
}

// ---------- CreateTeam ----------

func TestCreateTeam_BindingAndSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newStubHandlers()
	r := gin.New()
	r.POST("/teams", h.CreateTeam)

	// Missing name -> 400
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/teams", bytes.NewBufferString(`{"member_ids":[]}`)))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("no name -> %d", w.Code)
	}

	// Success -> 201
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/teams", bytes.NewBufferString(`{"name":"Lekki Hunters","member_ids":["`+uuid.NewString()+`"]}`))
	req.Header.Set("X-User-ID", "u1")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create -> %d body=%s", w.Code, w.Body.String())
	}
	var out domain.SearchTeam
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	if out.Name != "Lekki Hunters" || out.CreatorID != "u1" {
		t.Fatalf("unexpected team: %#v", out)
	}
}

// ---------- ShareProperty ----------

func TestShareProperty_DuplicateConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	team := uuid.NewString()
	body := `{"property_id":"` + uuid.NewString() + `"}`

	dupe := stubMsgSvc{
		share: func(ctx context.Context, teamID, propertyID, userID string) (*domain.SharedProperty, error) {
			return nil, repo.ErrDuplicate
		},
	}
	h := New(stubFeedSvc{}, stubEngageSvc{}, dupe, stubProfSvc{}, stubVerifySvc{}, 0.4023)
	r := gin.New()
	r.POST("/teams/:id/properties", h.ShareProperty)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/teams/"+team+"/properties", bytes.NewBufferString(body)))
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate share -> %d", w.Code)
	}
	if e := decodeErr(t, w); e.Code != ErrCodeConflict {
		t.Fatalf("code = %q", e.Code)
	}

	// Success -> 201
	h2 := newStubHandlers()
	r2 := gin.New()
	r2.POST("/teams/:id/properties", h2.ShareProperty)
	w = httptest.NewRecorder()
	r2.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/teams/"+team+"/properties", bytes.NewBufferString(body)))
	if w.Code != http.StatusCreated {
		t.Fatalf("share -> %d", w.Code)
	}
}

// ---------- Team comments ----------

func TestAddTeamComment_MembershipForbidden(t *testing.T) {
	gin.SetMode(gin.TestMode)
	shared := uuid.NewString()

	outsider := stubMsgSvc{
		addNote: func(ctx context.Context, sharedPropertyID, authorID, text string) (*domain.TeamComment, error) {
			return nil, services.ErrTeamNotFound
		},
	}
	h := New(stubFeedSvc{}, stubEngageSvc{}, outsider, stubProfSvc{}, stubVerifySvc{}, 0.4023)
	r := gin.New()
	r.POST("/shared/:id/comments", h.AddTeamComment)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/shared/"+shared+"/comments", bytes.NewBufferString(`{"text":"too pricey"}`))
	req.Header.Set("X-User-ID", "stranger")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("outsider -> %d", w.Code)
	}
	if e := decodeErr(t, w); e.Code != ErrCodeForbidden {
		t.Fatalf("code = %q", e.Code)
	}

	// member succeeds -> 201
	h2 := newStubHandlers()
	r2 := gin.New()
	r2.POST("/shared/:id/comments", h2.AddTeamComment)
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/shared/"+shared+"/comments", bytes.NewBufferString(`{"text":"too pricey"}`))
	req.Header.Set("X-User-ID", "u1")
	r2.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("member -> %d", w.Code)
	}
	var out domain.TeamComment
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	if out.SharedPropertyID != shared || out.AuthorID != "u1" {
		t.Fatalf("unexpected note: %#v", out)
	}
}

func TestListTeamComments_MissingSharedProperty(t *testing.T) {
	gin.SetMode(gin.TestMode)

	missing := stubMsgSvc{
		listNotes: func(ctx context.Context, sharedPropertyID, userID string, page, pageSize int) ([]domain.TeamComment, error) {
			return nil, services.ErrSharedPropertyNotFound
		},
	}
	h := New(stubFeedSvc{}, stubEngageSvc{}, missing, stubProfSvc{}, stubVerifySvc{}, 0.4023)
	r := gin.New()
	r.GET("/shared/:id/comments", h.ListTeamComments)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/shared/"+uuid.NewString()+"/comments", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing -> %d", w.Code)
	}
}
