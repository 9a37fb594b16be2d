package handler

import (
    "context"
    "errors"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/spot-reservation/internal/model"
    "github.com/iliyamo/spot-reservation/internal/repository"
    "github.com/iliyamo/spot-reservation/internal/utils"
)

// AuthConfig is the subset of configuration the auth endpoints need.
type AuthConfig struct {
    JWTSecret  string
    AccessTTL  time.Duration
    BcryptCost int
}

// AuthHandler bundles dependencies for signup, login and the current user.
type AuthHandler struct {
    Cfg   AuthConfig
    Users repository.UserStore
    Now   func() time.Time
}

func NewAuthHandler(cfg AuthConfig, users repository.UserStore) *AuthHandler {
    return &AuthHandler{Cfg: cfg, Users: users, Now: time.Now}
}

// ----- DTOs -----

type signupReq struct {
    Email     string `json:"email" validate:"required,email,max=180"`
    Password  string `json:"password" validate:"required,min=8,max=72"`
    Firstname string `json:"firstname" validate:"max=100"`
    Lastname  string `json:"lastname" validate:"max=100"`
}
type loginReq struct {
    Email    string `json:"email" validate:"required"`
    Password string `json:"password" validate:"required"`
}

type tokenPart struct {
    Token   string    `json:"token"`
    Expires time.Time `json:"expires"`
}
type userPart struct {
    ID        uint64 `json:"id"`
    Email     string `json:"email"`
    Firstname string `json:"firstname"`
    Lastname  string `json:"lastname"`
}
type authResp struct {
    User   userPart  `json:"user"`
    Access tokenPart `json:"access"`
}

func toUserPart(u model.User) userPart {
    return userPart{ID: u.ID, Email: u.Email, Firstname: u.Firstname, Lastname: u.Lastname}
}

// Signup creates a user and returns an access token immediately.
func (h *AuthHandler) Signup(c echo.Context) error {
    var req signupReq
    if ok, err := bindAndValidate(c, &req); !ok {
        return err
    }

    hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
    if err != nil {
        return respondError(c, err, "user")
    }
    u := model.User{
        Email:        req.Email,
        PasswordHash: hash,
        Firstname:    req.Firstname,
        Lastname:     req.Lastname,
        CreatedAt:    h.Now().UTC(),
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()
    if err := h.Users.Create(ctx, &u); err != nil {
        if errors.Is(err, repository.ErrEmailExists) {
            return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
        }
        return respondError(c, err, "user")
    }

    access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, h.Cfg.AccessTTL)
    if err != nil {
        return respondError(c, err, "user")
    }
    return c.JSON(http.StatusCreated, authResp{
        User:   toUserPart(u),
        Access: tokenPart{Token: access.Token, Expires: access.Exp},
    })
}

// Login verifies credentials and returns a fresh access token.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if ok, err := bindAndValidate(c, &req); !ok {
        return err
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    u, err := h.Users.GetByEmail(ctx, req.Email)
    if err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
        }
        return respondError(c, err, "user")
    }
    if !utils.VerifyPassword(u.PasswordHash, req.Password) {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
    }

    access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, h.Cfg.AccessTTL)
    if err != nil {
        return respondError(c, err, "user")
    }
    return c.JSON(http.StatusOK, authResp{
        User:   toUserPart(u),
        Access: tokenPart{Token: access.Token, Expires: access.Exp},
    })
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return unauthorized(c)
    }
    u, err := h.Users.GetByID(c.Request().Context(), uid)
    if err != nil {
        return respondError(c, err, "user")
    }
    return c.JSON(http.StatusOK, toUserPart(u))
}
