// Package seed loads demo accounts and likes through the account service.
package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	apperrors "likeboard/internal/errors"
	"likeboard/internal/service"
)

// User is one fixture account. Likes names the usernames this user likes.
type User struct {
	Username string   `json:"username"`
	Password string   `json:"password"`
	Likes    []string `json:"likes"`
}

// Fixture is the seed file layout.
type Fixture struct {
	Users []User `json:"users"`
}

// Result counts what a run did.
type Result struct {
	Created  int
	Existing int
	Likes    int
	Skipped  int
}

// Default is used when no fixture file is given.
var Default = Fixture{Users: []User{
	{Username: "alice", Password: "alice-pw", Likes: []string{"bob", "carol"}},
	{Username: "bob", Password: "bob-pw", Likes: []string{"carol"}},
	{Username: "carol", Password: "carol-pw", Likes: []string{"alice"}},
	{Username: "dave", Password: "dave-pw", Likes: []string{"carol", "alice"}},
}}

// Decode reads a Fixture from r.
func Decode(r io.Reader) (*Fixture, error) {
	var f Fixture
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	return &f, nil
}

// Run signs up every fixture user, logging in instead when the name is
// taken, then applies the likes. Unknown like targets are skipped.
func Run(ctx context.Context, svc service.UserService, f *Fixture, log *logrus.Logger) (Result, error) {
	var res Result
	ids := make(map[string]string, len(f.Users))

	for _, u := range f.Users {
		acct, err := svc.Signup(ctx, u.Username, u.Password)
		switch {
		case err == nil:
			res.Created++
		case errors.Is(err, apperrors.ErrUserExists):
			acct, err = svc.Login(ctx, u.Username, u.Password)
			if err != nil {
				return res, fmt.Errorf("login existing user %q: %w", u.Username, err)
			}
			res.Existing++
		default:
			return res, fmt.Errorf("signup %q: %w", u.Username, err)
		}
		ids[u.Username] = acct.ID
	}

	for _, u := range f.Users {
		for _, target := range u.Likes {
			targetID, ok := ids[target]
			if !ok {
				log.WithFields(logrus.Fields{"liker": u.Username, "target": target}).Warn("skipping like of unknown user")
				res.Skipped++
				continue
			}
			err := svc.UpdateLikes(ctx, service.UpdateLikesInput{
				LikerID: ids[u.Username],
				UserID:  targetID,
				Like:    true,
			})
			if err != nil {
				return res, fmt.Errorf("like %q -> %q: %w", u.Username, target, err)
			}
			res.Likes++
		}
	}

	return res, nil
}
