package router_test

import (
	"fmt"
	"net/http/httptest"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/vishnucprasad/bookmarkapi/internal/auth"
	"github.com/vishnucprasad/bookmarkapi/internal/db/memorystorage"
	"github.com/vishnucprasad/bookmarkapi/internal/ipchecker"
	"github.com/vishnucprasad/bookmarkapi/internal/models"
	"github.com/vishnucprasad/bookmarkapi/internal/passhash"
	"github.com/vishnucprasad/bookmarkapi/internal/router"
	"github.com/vishnucprasad/bookmarkapi/internal/service"
)

// ExampleNew shows the full client flow: register an account, then create
// and list bookmarks with the issued bearer token.
func ExampleNew() {
	db, _ := memorystorage.New()
	authService := auth.New(db, []byte("example-secret"), 10*time.Minute, passhash.Params{
		Memory:      8 * 1024,
		Iterations:  1,
		Parallelism: 1,
	})
	ipChecker, _ := ipchecker.New("")

	server := httptest.NewServer(router.New(service.New(db), authService, authService, ipChecker))
	defer server.Close()

	client := resty.New().SetBaseURL(server.URL)

	var token models.TokenResponse
	response, _ := client.R().
		SetBody(models.AuthRequest{Email: "example@example.com", Password: "123456789"}).
		SetResult(&token).
		Post("/auth/signup")
	fmt.Println("signup:", response.StatusCode())

	var created models.Bookmark
	response, _ = client.R().
		SetAuthToken(token.AccessToken).
		SetBody(models.CreateBookmarkRequest{Title: "Go blog", Link: "https://go.dev/blog"}).
		SetResult(&created).
		Post("/bookmarks")
	fmt.Println("create:", response.StatusCode(), created.Title)

	var bookmarks []models.Bookmark
	response, _ = client.R().
		SetAuthToken(token.AccessToken).
		SetResult(&bookmarks).
		Get("/bookmarks")
	fmt.Println("list:", response.StatusCode(), len(bookmarks))

	// Output:
	// signup: 201
	// create: 201 Go blog
	// list: 200 1
}
