package model

// User represents an application user record as stored in the `Users`
// table.  There is no password: a user proves identity with the
// (user_name, user_id) pair.  user_name is unique and may be renamed;
// user_id never changes.
//
// Fields:
//  ID   – Users.user_id, caller supplied at registration.
//  Name – Users.user_name, unique at any point in time.
type User struct {
    ID   string // Users.user_id
    Name string // Users.user_name
}
