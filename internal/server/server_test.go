package server

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/tablecritic/tablecritic/internal/config"
	"github.com/tablecritic/tablecritic/internal/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	m.Run()
}

func newTestServer(t *testing.T) (*httptest.Server, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Restaurant{}, &model.Review{}))

	cfg := &config.Config{
		AppEnv:         "test",
		Port:           "0",
		AllowedOrigins: "http://localhost",
		SessionSecret:  "test-secret",
		TemplateGlob:   "../../web/templates/*.html",
	}

	srv := New(db, cfg)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return ts, db
}

// newClient returns a cookie-carrying client that does not follow
// redirects, so 302 responses stay observable.
func newClient(t *testing.T) *http.Client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func signUpAndLogin(t *testing.T, client *http.Client, base, username string) {
	t.Helper()

	resp, err := client.PostForm(base+"/signup/", url.Values{
		"username":         {username},
		"password":         {"password123"},
		"password_confirm": {"password123"},
	})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/login/", resp.Header.Get("Location"))

	resp, err = client.PostForm(base+"/login/", url.Values{
		"username": {username},
		"password": {"password123"},
	})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/", resp.Header.Get("Location"))
}

func createRestaurant(t *testing.T, db *gorm.DB, name string) *model.Restaurant {
	t.Helper()
	restaurant := &model.Restaurant{Name: name}
	require.NoError(t, db.Create(restaurant).Error)
	return restaurant
}

func userByName(t *testing.T, db *gorm.DB, username string) *model.User {
	t.Helper()
	var user model.User
	require.NoError(t, db.First(&user, "username = ?", username).Error)
	return &user
}

func createReview(t *testing.T, db *gorm.DB, user *model.User, restaurant *model.Restaurant, rating int, body string) *model.Review {
	t.Helper()
	review := &model.Review{
		RestaurantID: restaurant.ID,
		UserID:       user.ID,
		Rating:       rating,
		Body:         body,
	}
	require.NoError(t, db.Create(review).Error)
	return review
}

func reviewCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&model.Review{}).Count(&count).Error)
	return count
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestHomeListsRestaurantsForAnonymousVisitors(t *testing.T) {
	ts, db := newTestServer(t)
	createRestaurant(t, db, "Test Restaurant")

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, readBody(t, resp), "Test Restaurant")
}

func TestHomeShowsNoAverageWithoutReviews(t *testing.T) {
	ts, db := newTestServer(t)
	createRestaurant(t, db, "Quiet Corner")

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	require.Contains(t, readBody(t, resp), "No reviews yet")
}

func TestRestaurantDetailUnknownIDIs404(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/restaurant/99999/")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAddReviewRequiresLogin(t *testing.T) {
	ts, db := newTestServer(t)
	restaurant := createRestaurant(t, db, "Test Restaurant")
	client := newClient(t)

	resp, err := client.Get(ts.URL + "/restaurant/" + restaurant.ID.String() + "/add_review/")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.True(t, strings.HasPrefix(resp.Header.Get("Location"), "/login/"))

	resp, err = client.PostForm(ts.URL+"/restaurant/"+restaurant.ID.String()+"/add_review/", url.Values{
		"rating": {"4"},
		"body":   {"sneaky"},
	})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.True(t, strings.HasPrefix(resp.Header.Get("Location"), "/login/"))

	require.Zero(t, reviewCount(t, db), "anonymous submissions persist nothing")
}

func TestCreateReviewRedirectsToRestaurant(t *testing.T) {
	ts, db := newTestServer(t)
	restaurant := createRestaurant(t, db, "Test Restaurant")
	client := newClient(t)
	signUpAndLogin(t, client, ts.URL, "testuser")

	resp, err := client.PostForm(ts.URL+"/restaurant/"+restaurant.ID.String()+"/add_review/", url.Values{
		"rating": {"4"},
		"body":   {"Great food!"},
	})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/restaurant/"+restaurant.ID.String()+"/", resp.Header.Get("Location"))
	require.EqualValues(t, 1, reviewCount(t, db))

	user := userByName(t, db, "testuser")
	var review model.Review
	require.NoError(t, db.First(&review, "restaurant_id = ?", restaurant.ID).Error)
	require.Equal(t, user.ID, review.UserID, "review is bound to the session principal")
	require.Equal(t, 4, review.Rating)
}

func TestCreateReviewOutOfRangeRatingRerendersForm(t *testing.T) {
	ts, db := newTestServer(t)
	restaurant := createRestaurant(t, db, "Fresh Restaurant")
	client := newClient(t)
	signUpAndLogin(t, client, ts.URL, "testuser")

	for _, rating := range []string{"6", "0", "abc"} {
		resp, err := client.PostForm(ts.URL+"/restaurant/"+restaurant.ID.String()+"/add_review/", url.Values{
			"rating": {rating},
			"body":   {"whatever"},
		})
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode, "rating %q re-renders, no redirect", rating)
		require.Contains(t, readBody(t, resp), "Rating")
	}

	require.Zero(t, reviewCount(t, db))
}

func TestCreateReviewUnknownRestaurantIs404BeforeValidation(t *testing.T) {
	ts, db := newTestServer(t)
	client := newClient(t)
	signUpAndLogin(t, client, ts.URL, "testuser")

	// An out-of-range rating would normally re-render the form; the
	// missing restaurant must win.
	resp, err := client.PostForm(ts.URL+"/restaurant/0190a000-0000-7000-8000-000000000000/add_review/", url.Values{
		"rating": {"6"},
	})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Zero(t, reviewCount(t, db))
}

func TestReviewDetailIsPublic(t *testing.T) {
	ts, db := newTestServer(t)
	restaurant := createRestaurant(t, db, "Test Restaurant")
	client := newClient(t)
	signUpAndLogin(t, client, ts.URL, "author")
	review := createReview(t, db, userByName(t, db, "author"), restaurant, 5, "A hidden gem")

	resp, err := http.Get(ts.URL + "/review/" + review.ID.String() + "/")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := readBody(t, resp)
	require.Contains(t, body, "A hidden gem")
	require.Contains(t, body, "Test Restaurant")
}

func TestAuthorCanUpdateReview(t *testing.T) {
	ts, db := newTestServer(t)
	restaurant := createRestaurant(t, db, "Test Restaurant")
	client := newClient(t)
	signUpAndLogin(t, client, ts.URL, "author")
	review := createReview(t, db, userByName(t, db, "author"), restaurant, 3, "decent")

	resp, err := client.Get(ts.URL + "/review/" + review.ID.String() + "/update/")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, readBody(t, resp), "decent")

	resp, err = client.PostForm(ts.URL+"/review/"+review.ID.String()+"/update/", url.Values{
		"rating": {"5"},
		"body":   {"changed my mind"},
	})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/review/"+review.ID.String()+"/", resp.Header.Get("Location"))

	var persisted model.Review
	require.NoError(t, db.First(&persisted, "id = ?", review.ID).Error)
	require.Equal(t, 5, persisted.Rating)
	require.Equal(t, "changed my mind", persisted.Body)
}

func TestNonAuthorCannotMutateReview(t *testing.T) {
	ts, db := newTestServer(t)
	restaurant := createRestaurant(t, db, "Test Restaurant")

	author := newClient(t)
	signUpAndLogin(t, author, ts.URL, "author")
	review := createReview(t, db, userByName(t, db, "author"), restaurant, 3, "mine")

	intruder := newClient(t)
	signUpAndLogin(t, intruder, ts.URL, "intruder")

	resp, err := intruder.Get(ts.URL + "/review/" + review.ID.String() + "/update/")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, err = intruder.PostForm(ts.URL+"/review/"+review.ID.String()+"/update/", url.Values{
		"rating": {"1"},
		"body":   {"vandalism"},
	})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, err = intruder.PostForm(ts.URL+"/review/"+review.ID.String()+"/delete/", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	var persisted model.Review
	require.NoError(t, db.First(&persisted, "id = ?", review.ID).Error)
	require.Equal(t, 3, persisted.Rating)
	require.Equal(t, "mine", persisted.Body)
}

func TestDeleteRequiresConfirmationStep(t *testing.T) {
	ts, db := newTestServer(t)
	restaurant := createRestaurant(t, db, "Test Restaurant")
	client := newClient(t)
	signUpAndLogin(t, client, ts.URL, "author")
	review := createReview(t, db, userByName(t, db, "author"), restaurant, 2, "so-so")

	// Navigating to the confirmation page must not delete anything.
	resp, err := client.Get(ts.URL + "/review/" + review.ID.String() + "/delete/")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, readBody(t, resp), "Are you sure")
	require.EqualValues(t, 1, reviewCount(t, db))

	resp, err = client.PostForm(ts.URL+"/review/"+review.ID.String()+"/delete/", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/restaurant/"+restaurant.ID.String()+"/", resp.Header.Get("Location"))
	require.Zero(t, reviewCount(t, db))
}

func TestRestaurantDetailShowsAverage(t *testing.T) {
	ts, db := newTestServer(t)
	restaurant := createRestaurant(t, db, "Test Restaurant")
	client := newClient(t)
	signUpAndLogin(t, client, ts.URL, "author")
	user := userByName(t, db, "author")
	createReview(t, db, user, restaurant, 2, "eh")
	createReview(t, db, user, restaurant, 4, "good")

	resp, err := http.Get(ts.URL + "/restaurant/" + restaurant.ID.String() + "/")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, readBody(t, resp), "3.0")
}

func TestSignupValidation(t *testing.T) {
	ts, db := newTestServer(t)
	client := newClient(t)

	// Mismatched confirmation re-renders the form.
	resp, err := client.PostForm(ts.URL+"/signup/", url.Values{
		"username":         {"testuser"},
		"password":         {"password123"},
		"password_confirm": {"different123"},
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, readBody(t, resp), "match")

	var count int64
	require.NoError(t, db.Model(&model.User{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	ts, _ := newTestServer(t)
	client := newClient(t)
	signUpAndLogin(t, client, ts.URL, "testuser")

	fresh := newClient(t)
	resp, err := fresh.PostForm(ts.URL+"/login/", url.Values{
		"username": {"testuser"},
		"password": {"wrongwrong"},
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, readBody(t, resp), "correct username and password")
}

func TestLogoutEndsSession(t *testing.T) {
	ts, db := newTestServer(t)
	restaurant := createRestaurant(t, db, "Test Restaurant")
	client := newClient(t)
	signUpAndLogin(t, client, ts.URL, "testuser")

	resp, err := client.PostForm(ts.URL+"/logout/", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/", resp.Header.Get("Location"))

	resp, err = client.Get(ts.URL + "/restaurant/" + restaurant.ID.String() + "/add_review/")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.True(t, strings.HasPrefix(resp.Header.Get("Location"), "/login/"))
}

func TestLoginHonorsNextParameter(t *testing.T) {
	ts, db := newTestServer(t)
	restaurant := createRestaurant(t, db, "Test Restaurant")
	client := newClient(t)

	resp, err := client.PostForm(ts.URL+"/signup/", url.Values{
		"username":         {"testuser"},
		"password":         {"password123"},
		"password_confirm": {"password123"},
	})
	require.NoError(t, err)
	resp.Body.Close()

	target := "/restaurant/" + restaurant.ID.String() + "/add_review/"
	resp, err = client.PostForm(ts.URL+"/login/", url.Values{
		"username": {"testuser"},
		"password": {"password123"},
		"next":     {target},
	})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, target, resp.Header.Get("Location"))
}
