package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/samvad-hq/sphere-client/internal/domain"
)

const (
	defaultPostsPageSize         = 10
	defaultNotificationsPageSize = 20
	uploadField                  = "file"
)

// Client groups the typed endpoint wrappers of the SocialSphere API.
type Client struct {
	Auth          AuthService
	Users         UsersService
	Posts         PostsService
	Chat          ChatService
	Notifications NotificationsService
	Upload        UploadService
	Test          TestService

	d *Dispatcher
}

// New wires every service group to d.
func New(d *Dispatcher) *Client {
	return &Client{
		Auth:          AuthService{d: d},
		Users:         UsersService{d: d},
		Posts:         PostsService{d: d},
		Chat:          ChatService{d: d},
		Notifications: NotificationsService{d: d},
		Upload:        UploadService{d: d},
		Test:          TestService{d: d},
		d:             d,
	}
}

// Dispatcher returns the underlying dispatcher.
func (c *Client) Dispatcher() *Dispatcher { return c.d }

// AuthService covers /auth.
type AuthService struct{ d *Dispatcher }

// Login exchanges credentials for a session token.
func (s AuthService) Login(ctx context.Context, creds domain.Credentials) Envelope[domain.AuthResult] {
	return Do[domain.AuthResult](ctx, s.d, "/auth/login", http.MethodPost, creds, nil)
}

// Register creates an account.
func (s AuthService) Register(ctx context.Context, reg domain.Registration) Envelope[domain.AuthResult] {
	return Do[domain.AuthResult](ctx, s.d, "/auth/register", http.MethodPost, reg, nil)
}

// Logout ends the session on the backend.
func (s AuthService) Logout(ctx context.Context) Envelope[any] {
	return Do[any](ctx, s.d, "/auth/logout", http.MethodPost, nil, nil)
}

// Me returns the user the current token belongs to.
func (s AuthService) Me(ctx context.Context) Envelope[domain.User] {
	return Do[domain.User](ctx, s.d, "/auth/me", http.MethodGet, nil, nil)
}

// UsersService covers /users.
type UsersService struct{ d *Dispatcher }

// Profile fetches a user by username.
func (s UsersService) Profile(ctx context.Context, username string) Envelope[domain.User] {
	return Do[domain.User](ctx, s.d, "/users/"+url.PathEscape(username), http.MethodGet, nil, nil)
}

// UpdateProfile edits the current user's profile.
func (s UsersService) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) Envelope[domain.User] {
	return Do[domain.User](ctx, s.d, "/users/profile", http.MethodPut, update, nil)
}

// Follow follows userID.
func (s UsersService) Follow(ctx context.Context, userID string) Envelope[any] {
	return Do[any](ctx, s.d, "/users/"+url.PathEscape(userID)+"/follow", http.MethodPost, nil, nil)
}

// Unfollow stops following userID.
func (s UsersService) Unfollow(ctx context.Context, userID string) Envelope[any] {
	return Do[any](ctx, s.d, "/users/"+url.PathEscape(userID)+"/unfollow", http.MethodPost, nil, nil)
}

// Followers lists the users following userID.
func (s UsersService) Followers(ctx context.Context, userID string) Envelope[[]domain.User] {
	return Do[[]domain.User](ctx, s.d, "/users/"+url.PathEscape(userID)+"/followers", http.MethodGet, nil, nil)
}

// Following lists the users userID follows.
func (s UsersService) Following(ctx context.Context, userID string) Envelope[[]domain.User] {
	return Do[[]domain.User](ctx, s.d, "/users/"+url.PathEscape(userID)+"/following", http.MethodGet, nil, nil)
}

// Search finds users matching query.
func (s UsersService) Search(ctx context.Context, query string) Envelope[[]domain.User] {
	return Do[[]domain.User](ctx, s.d, "/users/search?q="+url.QueryEscape(query), http.MethodGet, nil, nil)
}

// PostsService covers /posts. Page numbers start at 0; a non-positive size
// falls back to the endpoint default.
type PostsService struct{ d *Dispatcher }

// List returns one page of the feed. A non-positive size means 10.
func (s PostsService) List(ctx context.Context, page, size int) Envelope[domain.Page[domain.Post]] {
	return Do[domain.Page[domain.Post]](ctx, s.d, "/posts"+pageQuery(page, size, defaultPostsPageSize), http.MethodGet, nil, nil)
}

// ByUser returns one page of userID's posts.
func (s PostsService) ByUser(ctx context.Context, userID string, page, size int) Envelope[domain.Page[domain.Post]] {
	endpoint := "/posts/user/" + url.PathEscape(userID) + pageQuery(page, size, defaultPostsPageSize)
	return Do[domain.Page[domain.Post]](ctx, s.d, endpoint, http.MethodGet, nil, nil)
}

// Get fetches a single post.
func (s PostsService) Get(ctx context.Context, postID string) Envelope[domain.Post] {
	return Do[domain.Post](ctx, s.d, "/posts/"+url.PathEscape(postID), http.MethodGet, nil, nil)
}

// Create publishes a post.
func (s PostsService) Create(ctx context.Context, post domain.NewPost) Envelope[domain.Post] {
	return Do[domain.Post](ctx, s.d, "/posts", http.MethodPost, post, nil)
}

// Update replaces the content of postID.
func (s PostsService) Update(ctx context.Context, postID string, post domain.NewPost) Envelope[domain.Post] {
	return Do[domain.Post](ctx, s.d, "/posts/"+url.PathEscape(postID), http.MethodPut, post, nil)
}

// Delete removes postID.
func (s PostsService) Delete(ctx context.Context, postID string) Envelope[any] {
	return Do[any](ctx, s.d, "/posts/"+url.PathEscape(postID), http.MethodDelete, nil, nil)
}

// Like likes postID.
func (s PostsService) Like(ctx context.Context, postID string) Envelope[any] {
	return Do[any](ctx, s.d, "/posts/"+url.PathEscape(postID)+"/like", http.MethodPost, nil, nil)
}

// Unlike removes a like from postID.
func (s PostsService) Unlike(ctx context.Context, postID string) Envelope[any] {
	return Do[any](ctx, s.d, "/posts/"+url.PathEscape(postID)+"/unlike", http.MethodPost, nil, nil)
}

// Comments lists the comments on postID.
func (s PostsService) Comments(ctx context.Context, postID string) Envelope[[]domain.Comment] {
	return Do[[]domain.Comment](ctx, s.d, "/posts/"+url.PathEscape(postID)+"/comments", http.MethodGet, nil, nil)
}

// AddComment comments on postID.
func (s PostsService) AddComment(ctx context.Context, postID, content string) Envelope[domain.Comment] {
	body := map[string]string{"content": content}
	return Do[domain.Comment](ctx, s.d, "/posts/"+url.PathEscape(postID)+"/comments", http.MethodPost, body, nil)
}

// ChatService covers /chat.
type ChatService struct{ d *Dispatcher }

// Conversations lists the current user's conversations.
func (s ChatService) Conversations(ctx context.Context) Envelope[[]domain.Conversation] {
	return Do[[]domain.Conversation](ctx, s.d, "/chat/conversations", http.MethodGet, nil, nil)
}

// Messages lists the messages in a conversation.
func (s ChatService) Messages(ctx context.Context, conversationID string) Envelope[[]domain.Message] {
	return Do[[]domain.Message](ctx, s.d, "/chat/conversations/"+url.PathEscape(conversationID), http.MethodGet, nil, nil)
}

// Send posts a message to a conversation.
func (s ChatService) Send(ctx context.Context, conversationID, content string) Envelope[domain.Message] {
	body := map[string]string{"content": content}
	return Do[domain.Message](ctx, s.d, "/chat/conversations/"+url.PathEscape(conversationID), http.MethodPost, body, nil)
}

// CreateConversation starts a conversation between userIDs.
func (s ChatService) CreateConversation(ctx context.Context, userIDs []string) Envelope[domain.Conversation] {
	if userIDs == nil {
		userIDs = []string{}
	}
	body := map[string][]string{"participants": userIDs}
	return Do[domain.Conversation](ctx, s.d, "/chat/conversations", http.MethodPost, body, nil)
}

// NotificationsService covers /notifications.
type NotificationsService struct{ d *Dispatcher }

// List returns one page of notifications. A non-positive size means 20.
func (s NotificationsService) List(ctx context.Context, page, size int) Envelope[domain.Page[domain.Notification]] {
	endpoint := "/notifications" + pageQuery(page, size, defaultNotificationsPageSize)
	return Do[domain.Page[domain.Notification]](ctx, s.d, endpoint, http.MethodGet, nil, nil)
}

// MarkRead marks one notification as read.
func (s NotificationsService) MarkRead(ctx context.Context, notificationID string) Envelope[any] {
	return Do[any](ctx, s.d, "/notifications/"+url.PathEscape(notificationID)+"/read", http.MethodPost, nil, nil)
}

// MarkAllRead marks every notification as read.
func (s NotificationsService) MarkAllRead(ctx context.Context) Envelope[any] {
	return Do[any](ctx, s.d, "/notifications/read-all", http.MethodPost, nil, nil)
}

// UploadService covers /upload. Files go out as multipart with field "file".
type UploadService struct{ d *Dispatcher }

// Image uploads an image as multipart form data.
func (s UploadService) Image(ctx context.Context, name, contentType string, r io.Reader) Envelope[domain.UploadResult] {
	return s.upload(ctx, "/upload/image", name, contentType, r)
}

// Video uploads a video as multipart form data.
func (s UploadService) Video(ctx context.Context, name, contentType string, r io.Reader) Envelope[domain.UploadResult] {
	return s.upload(ctx, "/upload/video", name, contentType, r)
}

func (s UploadService) upload(ctx context.Context, endpoint, name, contentType string, r io.Reader) Envelope[domain.UploadResult] {
	form := NewMultipart().AddFile(uploadField, name, contentType, r)
	return Do[domain.UploadResult](ctx, s.d, endpoint, http.MethodPost, form, nil)
}

// TestService exposes the backend's hello endpoint.
type TestService struct{ d *Dispatcher }

// Hello calls the backend root.
func (s TestService) Hello(ctx context.Context) Envelope[any] {
	return Do[any](ctx, s.d, "/", http.MethodGet, nil, nil)
}

func pageQuery(page, size, defaultSize int) string {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = defaultSize
	}
	return fmt.Sprintf("?page=%d&size=%d", page, size)
}
