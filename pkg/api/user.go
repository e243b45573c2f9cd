package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"slices"

	"github.com/roamjs/gateway/pkg/billing"
	"github.com/roamjs/gateway/pkg/directory"
	"github.com/roamjs/gateway/pkg/httputil"
	"github.com/roamjs/gateway/pkg/middleware"
)

// ExpandPeriod is the expand query value requesting the billing period
const ExpandPeriod = "period"

// connectExtensions hold a billing connect account exposed to the developer
var connectExtensions = []string{"developer"}

// hiddenFields are never returned from an identity's extension data
var hiddenFields = []string{"token", "authenticated"}

// UserInfo is the response of GET /user. Data is flattened into the
// top-level object alongside the identity fields.
type UserInfo struct {
	Data            map[string]any
	Email           string
	ID              string
	PayPeriod       *billing.Period
	StripeAccountID *string
}

// MarshalJSON flattens the extension data and omits unset optional fields
func (u UserInfo) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(u.Data)+5)
	for k, v := range u.Data {
		out[k] = v
	}
	if u.Email != "" {
		out["email"] = u.Email
	}
	out["id"] = u.ID
	if u.PayPeriod != nil {
		out["start"] = u.PayPeriod.Start.Unix()
		out["end"] = u.PayPeriod.End.Unix()
	}
	if u.StripeAccountID != nil {
		out["stripeAccountId"] = *u.StripeAccountID
	}
	return json.Marshal(out)
}

// UserInfoBuilder assembles a UserInfo
type UserInfoBuilder struct {
	info UserInfo
}

// NewUserInfoBuilder starts a UserInfo for identity
func NewUserInfoBuilder(identity *directory.Identity) *UserInfoBuilder {
	return &UserInfoBuilder{info: UserInfo{
		Data:  map[string]any{},
		Email: identity.PrimaryEmail(),
		ID:    identity.ID,
	}}
}

// WithData copies the extension data, dropping hidden fields
func (b *UserInfoBuilder) WithData(data map[string]any) *UserInfoBuilder {
	for k, v := range data {
		if slices.Contains(hiddenFields, k) {
			continue
		}
		b.info.Data[k] = v
	}
	return b
}

// WithPayPeriod sets the billing period; nil leaves it unset
func (b *UserInfoBuilder) WithPayPeriod(p *billing.Period) *UserInfoBuilder {
	b.info.PayPeriod = p
	return b
}

// WithStripeAccount sets the connect account id; "" leaves it unset
func (b *UserInfoBuilder) WithStripeAccount(id string) *UserInfoBuilder {
	if id != "" {
		b.info.StripeAccountID = &id
	}
	return b
}

// Build returns the assembled UserInfo
func (b *UserInfoBuilder) Build() UserInfo {
	return b.info
}

// userInfo returns what the developer may know about the calling end user
func (s *Server) userInfo(r *http.Request) (*httputil.Result, error) {
	ctx := r.Context()
	user := middleware.GetUser(r)
	identity := user.Identity
	extension := middleware.TargetExtension(r)

	if extension != "" && !identity.HasExtension(extension) {
		return httputil.Text(http.StatusForbidden, fmt.Sprintf("User does not currently have any %s data.", extension)), nil
	}

	data, err := identity.ExtensionData(extension)
	if err != nil {
		return nil, err
	}
	b := NewUserInfoBuilder(identity).WithData(data)

	if extension != "" && httputil.ParseQueryString(r, "expand", "") == ExpandPeriod {
		period, err := s.billing.CurrentPeriod(ctx, user.Environment, identity.Private.StripeID)
		if err != nil {
			berr := billing.FromProvider(err)
			return httputil.Text(berr.Status, berr.Message), nil
		}
		b.WithPayPeriod(period)
	}
	if slices.Contains(connectExtensions, directory.FieldName(extension)) {
		b.WithStripeAccount(identity.Private.StripeAccount)
	}

	return httputil.OK(b.Build()), nil
}
