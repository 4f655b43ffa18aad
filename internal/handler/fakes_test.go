package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hemensatbana/marketplace-api/internal/middleware"
	"github.com/hemensatbana/marketplace-api/internal/model"
	"github.com/hemensatbana/marketplace-api/internal/queue"
	"github.com/hemensatbana/marketplace-api/internal/repository"
	"github.com/hemensatbana/marketplace-api/internal/utils"
)

// In-memory store fakes. They implement the handler store interfaces
// with just enough semantics to exercise the authorization and
// validation paths; no fake tries to reproduce SQL ordering beyond
// what a test asserts.

// ----- request plumbing -----

func newCtx(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func asUser(c echo.Context, uid string) { c.Set(middleware.ContextUserID, uid) }

// ----- listings -----

type fakeListings struct {
	rows       map[string]model.Listing
	increments map[string]int
	browseLast repository.ListingQuery
}

func newFakeListings(rows ...model.Listing) *fakeListings {
	f := &fakeListings{rows: map[string]model.Listing{}, increments: map[string]int{}}
	for _, r := range rows {
		f.rows[r.ID] = r
	}
	return f
}

func (f *fakeListings) Browse(_ context.Context, q repository.ListingQuery) ([]model.ListingView, error) {
	f.browseLast = q
	out := []model.ListingView{}
	for _, r := range f.rows {
		if r.Status != model.StatusActive {
			continue
		}
		if q.Category != "" && r.Category != q.Category {
			continue
		}
		out = append(out, model.ListingView{Listing: r})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeListings) ListByOwner(_ context.Context, ownerID string, _, _ int) ([]model.ListingView, error) {
	out := []model.ListingView{}
	for _, r := range f.rows {
		if r.UserID == ownerID {
			out = append(out, model.ListingView{Listing: r})
		}
	}
	return out, nil
}

func (f *fakeListings) GetView(_ context.Context, id string) (model.ListingView, error) {
	r, ok := f.rows[id]
	if !ok {
		return model.ListingView{}, repository.ErrNotFound
	}
	return model.ListingView{Listing: r}, nil
}

func (f *fakeListings) GetRow(_ context.Context, id string) (model.Listing, error) {
	r, ok := f.rows[id]
	if !ok {
		return model.Listing{}, repository.ErrNotFound
	}
	return r, nil
}

func (f *fakeListings) Create(_ context.Context, l *model.Listing) error {
	f.rows[l.ID] = *l
	return nil
}

func (f *fakeListings) Update(_ context.Context, id string, p repository.ListingPatch) error {
	r := f.rows[id]
	if p.Title != nil {
		r.Title = *p.Title
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.Category != nil {
		r.Category = *p.Category
	}
	if p.Status != nil {
		r.Status = *p.Status
	}
	if p.Urgency != nil {
		r.Urgency = *p.Urgency
	}
	f.rows[id] = r
	return nil
}

func (f *fakeListings) Delete(_ context.Context, id string) error {
	delete(f.rows, id)
	return nil
}

func (f *fakeListings) IncrementViews(_ context.Context, id string) error {
	f.increments[id]++
	r := f.rows[id]
	r.Views++
	f.rows[id] = r
	return nil
}

// ----- messages -----

type fakeMessages struct {
	rows            []model.Message
	deletedListings []string
}

func (f *fakeMessages) ListForUser(_ context.Context, userID string, _, _ int) ([]model.MessageView, error) {
	out := []model.MessageView{}
	for _, m := range f.rows {
		if m.SenderID == userID || m.ReceiverID == userID {
			out = append(out, model.MessageView{Message: m})
		}
	}
	return out, nil
}

func (f *fakeMessages) ListForListing(_ context.Context, listingID string) ([]model.MessageView, error) {
	out := []model.MessageView{}
	for _, m := range f.rows {
		if m.ListingID == listingID {
			out = append(out, model.MessageView{Message: m})
		}
	}
	return out, nil
}

func (f *fakeMessages) GetView(_ context.Context, id string) (model.MessageView, error) {
	m, err := f.GetRow(nil, id)
	if err != nil {
		return model.MessageView{}, err
	}
	return model.MessageView{Message: m}, nil
}

func (f *fakeMessages) GetRow(_ context.Context, id string) (model.Message, error) {
	for _, m := range f.rows {
		if m.ID == id {
			return m, nil
		}
	}
	return model.Message{}, repository.ErrNotFound
}

func (f *fakeMessages) Create(_ context.Context, m *model.Message) error {
	f.rows = append(f.rows, *m)
	return nil
}

func (f *fakeMessages) HasSentToListing(_ context.Context, listingID, senderID string) (bool, error) {
	for _, m := range f.rows {
		if m.ListingID == listingID && m.SenderID == senderID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeMessages) MarkRead(_ context.Context, id string) error {
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows[i].IsRead = true
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeMessages) CountUnread(_ context.Context, userID string) (int64, error) {
	var n int64
	for _, m := range f.rows {
		if m.ReceiverID == userID && !m.IsRead {
			n++
		}
	}
	return n, nil
}

func (f *fakeMessages) DeleteByListing(_ context.Context, listingID string) error {
	f.deletedListings = append(f.deletedListings, listingID)
	kept := f.rows[:0]
	for _, m := range f.rows {
		if m.ListingID != listingID {
			kept = append(kept, m)
		}
	}
	f.rows = kept
	return nil
}

// ----- favorites -----

type fakeFavorites struct {
	rows            map[string]model.Favorite // keyed userID|listingID
	deletedListings []string
}

func newFakeFavorites() *fakeFavorites {
	return &fakeFavorites{rows: map[string]model.Favorite{}}
}

func favKey(userID, listingID string) string { return userID + "|" + listingID }

func (f *fakeFavorites) ListForUser(_ context.Context, userID string, _, _ int) ([]model.FavoriteView, error) {
	out := []model.FavoriteView{}
	for _, v := range f.rows {
		if v.UserID == userID {
			out = append(out, model.FavoriteView{Favorite: v})
		}
	}
	return out, nil
}

func (f *fakeFavorites) Exists(_ context.Context, userID, listingID string) (bool, error) {
	_, ok := f.rows[favKey(userID, listingID)]
	return ok, nil
}

func (f *fakeFavorites) Create(_ context.Context, fav *model.Favorite) error {
	k := favKey(fav.UserID, fav.ListingID)
	if _, ok := f.rows[k]; ok {
		return repository.ErrDuplicateFavorite
	}
	f.rows[k] = *fav
	return nil
}

func (f *fakeFavorites) GetView(_ context.Context, id string) (model.FavoriteView, error) {
	for _, v := range f.rows {
		if v.ID == id {
			return model.FavoriteView{Favorite: v}, nil
		}
	}
	return model.FavoriteView{}, repository.ErrNotFound
}

func (f *fakeFavorites) Delete(_ context.Context, userID, listingID string) error {
	k := favKey(userID, listingID)
	if _, ok := f.rows[k]; !ok {
		return repository.ErrNotFound
	}
	delete(f.rows, k)
	return nil
}

func (f *fakeFavorites) DeleteByListing(_ context.Context, listingID string) error {
	f.deletedListings = append(f.deletedListings, listingID)
	for k, v := range f.rows {
		if v.ListingID == listingID {
			delete(f.rows, k)
		}
	}
	return nil
}

// ----- users and tokens -----

type fakeUsers struct {
	byID      map[string]model.User
	passwords map[string]string // userID -> plain, bcrypt is tested separately
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[string]model.User{}, passwords: map[string]string{}}
}

func (f *fakeUsers) add(u model.User, password string) {
	f.byID[u.ID] = u
	f.passwords[u.ID] = password
}

func (f *fakeUsers) Create(_ context.Context, u *model.User, password string, cost int) error {
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return repository.ErrEmailExists
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	f.byID[u.ID] = *u
	f.passwords[u.ID] = password
	return nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (model.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) UpdateProfile(_ context.Context, id string, p repository.UserPatch) error {
	u, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Phone != nil {
		u.Phone = p.Phone
	}
	if p.Location != nil {
		u.Location = p.Location
	}
	f.byID[id] = u
	return nil
}

type fakeTokens struct {
	byHash map[string]string // hash -> userID
}

func newFakeTokens() *fakeTokens { return &fakeTokens{byHash: map[string]string{}} }

func (f *fakeTokens) StoreRefresh(_ context.Context, userID, tokenHash string, _ time.Time) error {
	f.byHash[tokenHash] = userID
	return nil
}

func (f *fakeTokens) ValidateRefresh(_ context.Context, tokenHash string) (string, error) {
	uid, ok := f.byHash[tokenHash]
	if !ok {
		return "", repository.ErrNotFound
	}
	return uid, nil
}

func (f *fakeTokens) RevokeByHash(_ context.Context, tokenHash string) error {
	delete(f.byHash, tokenHash)
	return nil
}

func (f *fakeTokens) RevokeAllForUser(_ context.Context, userID string) error {
	for h, uid := range f.byHash {
		if uid == userID {
			delete(f.byHash, h)
		}
	}
	return nil
}

// ----- stats and events -----

type fakeStats struct{ stats repository.UserStats }

func (f *fakeStats) ForUser(_ context.Context, _ string) (repository.UserStats, error) {
	return f.stats, nil
}

type fakeEvents struct{ published []queue.MessageSentEvent }

func (f *fakeEvents) PublishMessageSent(_ context.Context, ev queue.MessageSentEvent) error {
	f.published = append(f.published, ev)
	return nil
}
