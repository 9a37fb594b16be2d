package model

import "time"

// User represents an application user record as stored in the
// `users` table.  A user owns pots and reservations through their
// user_id columns.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique, lower-cased email address.
//  PasswordHash – bcrypt hashed password.
//  Firstname    – given name.
//  Lastname     – family name.
//  CreatedAt    – timestamp of creation.
type User struct {
    ID           uint64    // users.id
    Email        string    // users.email
    PasswordHash string    // users.password_hash
    Firstname    string    // users.firstname
    Lastname     string    // users.lastname
    CreatedAt    time.Time // users.created_at
}
