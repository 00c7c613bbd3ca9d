// models/user.go
package models

import "encoding/json"

// User is the guest record returned by the remote API on login.
// The full server payload is kept in Raw so persisting and reloading a
// session never drops fields this front-end does not model.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`

	Raw json.RawMessage `json:"-"`
}

type userAlias User

func (u *User) UnmarshalJSON(data []byte) error {
	var a userAlias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*u = User(a)
	u.Raw = append(json.RawMessage(nil), data...)
	return nil
}

func (u User) MarshalJSON() ([]byte, error) {
	if len(u.Raw) > 0 {
		return u.Raw, nil
	}
	return json.Marshal(userAlias(u))
}

// Session is the client-side credential state.
type Session struct {
	User         *User  `json:"user,omitempty"`
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// Authenticated is false whenever the access token is absent, even if a
// user record is still around.
func (s Session) Authenticated() bool {
	return s.AccessToken != ""
}

// Empty reports whether no field is set.
func (s Session) Empty() bool {
	return s.User == nil && s.AccessToken == "" && s.RefreshToken == ""
}
