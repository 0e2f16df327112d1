package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/samvad-hq/sphere-client/internal/domain"
)

// recordedRequest captures what the mock backend received.
type recordedRequest struct {
	Method string
	URI    string
	Body   string
}

func recordingServer(t *testing.T, status int, response string) (*[]recordedRequest, *Client) {
	t.Helper()
	var seen []recordedRequest
	_, d := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		seen = append(seen, recordedRequest{Method: r.Method, URI: r.URL.RequestURI(), Body: string(body)})
		writeJSON(w, status, response)
	})
	return &seen, New(d)
}

func TestServiceRoutes(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name   string
		call   func(c *Client)
		method string
		uri    string
		body   string
	}{
		{"login", func(c *Client) { c.Auth.Login(ctx, domain.Credentials{Username: "a", Password: "b"}) }, "POST", "/auth/login", `{"username":"a","password":"b"}`},
		{"register", func(c *Client) {
			c.Auth.Register(ctx, domain.Registration{Username: "a", Email: "a@x.io", Password: "b"})
		}, "POST", "/auth/register", `{"username":"a","email":"a@x.io","password":"b"}`},
		{"logout", func(c *Client) { c.Auth.Logout(ctx) }, "POST", "/auth/logout", ""},
		{"me", func(c *Client) { c.Auth.Me(ctx) }, "GET", "/auth/me", ""},
		{"profile", func(c *Client) { c.Users.Profile(ctx, "jane doe") }, "GET", "/users/jane%20doe", ""},
		{"update profile", func(c *Client) { c.Users.UpdateProfile(ctx, domain.ProfileUpdate{Bio: "hi"}) }, "PUT", "/users/profile", `{"bio":"hi"}`},
		{"follow", func(c *Client) { c.Users.Follow(ctx, "u1") }, "POST", "/users/u1/follow", ""},
		{"unfollow", func(c *Client) { c.Users.Unfollow(ctx, "u1") }, "POST", "/users/u1/unfollow", ""},
		{"followers", func(c *Client) { c.Users.Followers(ctx, "u1") }, "GET", "/users/u1/followers", ""},
		{"following", func(c *Client) { c.Users.Following(ctx, "u1") }, "GET", "/users/u1/following", ""},
		{"search", func(c *Client) { c.Users.Search(ctx, "jane & co") }, "GET", "/users/search?q=jane+%26+co", ""},
		{"posts default page", func(c *Client) { c.Posts.List(ctx, 0, 0) }, "GET", "/posts?page=0&size=10", ""},
		{"posts page", func(c *Client) { c.Posts.List(ctx, 2, 5) }, "GET", "/posts?page=2&size=5", ""},
		{"user posts", func(c *Client) { c.Posts.ByUser(ctx, "u1", -1, 0) }, "GET", "/posts/user/u1?page=0&size=10", ""},
		{"get post", func(c *Client) { c.Posts.Get(ctx, "p1") }, "GET", "/posts/p1", ""},
		{"create post", func(c *Client) {
			c.Posts.Create(ctx, domain.NewPost{Content: "hello", Visibility: domain.VisibilityPublic})
		}, "POST", "/posts", `{"content":"hello","visibility":"PUBLIC"}`},
		{"update post", func(c *Client) { c.Posts.Update(ctx, "p1", domain.NewPost{Content: "edit"}) }, "PUT", "/posts/p1", `{"content":"edit"}`},
		{"delete post", func(c *Client) { c.Posts.Delete(ctx, "p1") }, "DELETE", "/posts/p1", ""},
		{"like", func(c *Client) { c.Posts.Like(ctx, "p1") }, "POST", "/posts/p1/like", ""},
		{"unlike", func(c *Client) { c.Posts.Unlike(ctx, "p1") }, "POST", "/posts/p1/unlike", ""},
		{"comments", func(c *Client) { c.Posts.Comments(ctx, "p1") }, "GET", "/posts/p1/comments", ""},
		{"add comment", func(c *Client) { c.Posts.AddComment(ctx, "p1", "nice") }, "POST", "/posts/p1/comments", `{"content":"nice"}`},
		{"conversations", func(c *Client) { c.Chat.Conversations(ctx) }, "GET", "/chat/conversations", ""},
		{"messages", func(c *Client) { c.Chat.Messages(ctx, "c1") }, "GET", "/chat/conversations/c1", ""},
		{"send message", func(c *Client) { c.Chat.Send(ctx, "c1", "hey") }, "POST", "/chat/conversations/c1", `{"content":"hey"}`},
		{"create conversation", func(c *Client) { c.Chat.CreateConversation(ctx, []string{"u1", "u2"}) }, "POST", "/chat/conversations", `{"participants":["u1","u2"]}`},
		{"notifications", func(c *Client) { c.Notifications.List(ctx, 0, 0) }, "GET", "/notifications?page=0&size=20", ""},
		{"mark read", func(c *Client) { c.Notifications.MarkRead(ctx, "n1") }, "POST", "/notifications/n1/read", ""},
		{"mark all read", func(c *Client) { c.Notifications.MarkAllRead(ctx) }, "POST", "/notifications/read-all", ""},
		{"hello", func(c *Client) { c.Test.Hello(ctx) }, "GET", "/", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			seen, client := recordingServer(t, http.StatusOK, `{}`)
			tc.call(client)
			if len(*seen) != 1 {
				t.Fatalf("expected 1 request, got %d", len(*seen))
			}
			got := (*seen)[0]
			if got.Method != tc.method || got.URI != tc.uri {
				t.Fatalf("got %s %s, want %s %s", got.Method, got.URI, tc.method, tc.uri)
			}
			if got.Body != tc.body {
				t.Fatalf("got body %q, want %q", got.Body, tc.body)
			}
		})
	}
}

func TestLoginDecodesToken(t *testing.T) {
	_, client := recordingServer(t, http.StatusOK, `{"token":"jwt-abc","user":{"id":"1","username":"janedoe"}}`)

	env := client.Auth.Login(context.Background(), domain.Credentials{Username: "janedoe", Password: "pw"})
	res, ok := env.Value()
	if !ok || res.Token != "jwt-abc" || res.User == nil || res.User.Username != "janedoe" {
		t.Fatalf("unexpected envelope %+v", env)
	}
}

func TestPostsListDecodesPage(t *testing.T) {
	page := `{"content":[{"id":"1","user":{"id":"1","username":"janedoe"},"content":"hi","imageUrl":null,
		"timestamp":"2023-06-15T14:30:00Z","likes":42,"comments":5,"liked":false}],
		"totalElements":1,"totalPages":1,"number":0,"size":10,"last":true}`
	_, client := recordingServer(t, http.StatusOK, page)

	env := client.Posts.List(context.Background(), 0, 10)
	got, ok := env.Value()
	if !ok || len(got.Content) != 1 {
		t.Fatalf("unexpected envelope %+v (%q)", env, env.Message())
	}
	post := got.Content[0]
	if post.Likes != 42 || post.ImageURL != nil || post.User.Username != "janedoe" || post.Timestamp.Year() != 2023 {
		t.Fatalf("unexpected post %+v", post)
	}
}

func TestUploadImageSendsMultipart(t *testing.T) {
	_, d := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/upload/image" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			return
		}
		defer f.Close()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"url": "/media/" + hdr.Filename, "contentType": hdr.Header.Get("Content-Type")})
	})
	client := New(d)

	env := client.Upload.Image(context.Background(), "avatar.png", "image/png", strings.NewReader("png"))
	res, ok := env.Value()
	if !ok || env.Status != http.StatusOK {
		t.Fatalf("unexpected envelope %+v (%q)", env, env.Message())
	}
	if res.URL != "/media/avatar.png" || res.ContentType != "image/png" {
		t.Fatalf("unexpected upload result %+v", res)
	}
}
