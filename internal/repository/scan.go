package repository

import (
	"database/sql"
	"strings"

	"github.com/hemensatbana/marketplace-api/internal/model"
)

// isDuplicateKey reports whether err is a MySQL duplicate-entry error
// (code 1062). Unique key violations on users.email and the
// favorites (user_id, listing_id) pair are detected this way.
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}

// userColumns groups the nullable columns produced by a LEFT JOIN
// against users. When the join matched nothing every column is NULL
// and asUser returns nil, mirroring the flatten-first-or-null step of
// the read pipeline.
type userColumns struct {
	id        sql.NullString
	firstName sql.NullString
	lastName  sql.NullString
	email     sql.NullString
	phone     sql.NullString
	location  sql.NullString
	rating    sql.NullFloat64
	verified  sql.NullBool
	avatar    sql.NullString
	createdAt sql.NullTime
	updatedAt sql.NullTime
}

// dests returns scan targets in the same order the user columns are
// selected. The password hash is never part of the select list, so it
// cannot cross the store boundary.
func (uc *userColumns) dests() []any {
	return []any{
		&uc.id, &uc.firstName, &uc.lastName, &uc.email, &uc.phone,
		&uc.location, &uc.rating, &uc.verified, &uc.avatar,
		&uc.createdAt, &uc.updatedAt,
	}
}

func (uc *userColumns) asUser() *model.User {
	if !uc.id.Valid {
		return nil
	}
	u := &model.User{
		ID:        uc.id.String,
		FirstName: uc.firstName.String,
		LastName:  uc.lastName.String,
		Email:     uc.email.String,
		Rating:    uc.rating.Float64,
		Verified:  uc.verified.Bool,
		CreatedAt: uc.createdAt.Time,
		UpdatedAt: uc.updatedAt.Time,
	}
	u.Phone = strPtr(uc.phone)
	u.Location = strPtr(uc.location)
	u.Avatar = strPtr(uc.avatar)
	return u
}

// listingColumns groups the nullable columns of a LEFT JOIN against
// listings, used by message and favorite reads.
type listingColumns struct {
	id          sql.NullString
	title       sql.NullString
	description sql.NullString
	category    sql.NullString
	location    sql.NullString
	budgetMin   sql.NullFloat64
	budgetMax   sql.NullFloat64
	urgency     sql.NullString
	status      sql.NullString
	userID      sql.NullString
	views       sql.NullInt64
	createdAt   sql.NullTime
	updatedAt   sql.NullTime
}

func (lc *listingColumns) dests() []any {
	return []any{
		&lc.id, &lc.title, &lc.description, &lc.category, &lc.location,
		&lc.budgetMin, &lc.budgetMax, &lc.urgency, &lc.status,
		&lc.userID, &lc.views, &lc.createdAt, &lc.updatedAt,
	}
}

func (lc *listingColumns) asListing() *model.Listing {
	if !lc.id.Valid {
		return nil
	}
	l := &model.Listing{
		ID:          lc.id.String,
		Title:       lc.title.String,
		Description: lc.description.String,
		Category:    lc.category.String,
		Urgency:     lc.urgency.String,
		Status:      lc.status.String,
		UserID:      lc.userID.String,
		Views:       lc.views.Int64,
		CreatedAt:   lc.createdAt.Time,
		UpdatedAt:   lc.updatedAt.Time,
	}
	l.Location = strPtr(lc.location)
	if lc.budgetMin.Valid {
		v := lc.budgetMin.Float64
		l.BudgetMin = &v
	}
	if lc.budgetMax.Valid {
		v := lc.budgetMax.Float64
		l.BudgetMax = &v
	}
	return l
}

func strPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}
