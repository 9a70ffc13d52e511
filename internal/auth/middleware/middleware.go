package auth

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/skillforge/skillforge/internal/notify"
	"github.com/skillforge/skillforge/internal/rbac"
)

type AuthService struct {
	hmac []byte
	db   *sql.DB
	mail notify.Mailer
}

func NewAuthService(secret string, db *sql.DB, mail notify.Mailer) *AuthService {
	if mail == nil {
		mail = notify.NopMailer{}
	}
	return &AuthService{hmac: []byte(secret), db: db, mail: mail}
}

type Claims struct {
	Sub       string `json:"sub"`
	Role      string `json:"role"` // "student", "instructor" or "admin"
	StudentID int64  `json:"student_id,omitempty"`
	jwt.RegisteredClaims
}

func (a *AuthService) IssueJWT(sub, role string, studentID int64) (string, error) {
	now := time.Now()
	claims := &Claims{
		Sub:       sub,
		Role:      role,
		StudentID: studentID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "skillforge",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(8 * time.Hour)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(a.hmac)
}

func (a *AuthService) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return a.hmac, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return nil, err
	}
	c, _ := token.Claims.(*Claims)
	return c, nil
}

// POST /auth/login  { "username": "...", "password": "..." }
func LoginHandler(a *AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		var (
			userID int64
			hash   string
			role   string
		)
		err := a.db.QueryRowContext(r.Context(),
			`SELECT id, password_hash, role FROM users WHERE username=$1`,
			req.Username).Scan(&userID, &hash, &role)
		if errors.Is(err, sql.ErrNoRows) ||
			(err == nil && bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil) {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		if err != nil {
			http.Error(w, "lookup user", http.StatusInternalServerError)
			return
		}

		var studentID int64
		if role == "student" {
			err := a.db.QueryRowContext(r.Context(),
				`SELECT id FROM students WHERE user_id=$1`, userID).Scan(&studentID)
			if err != nil && !errors.Is(err, sql.ErrNoRows) {
				http.Error(w, "lookup student", http.StatusInternalServerError)
				return
			}
		}

		tok, err := a.IssueJWT(req.Username, role, studentID)
		if err != nil {
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": tok,
			"role":         role,
			"student_id":   studentID,
		})
	}
}

// POST /auth/register creates a user and, for students, the matching student
// row. The welcome mail is fire and forget.
func RegisterHandler(a *AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Email    string `json:"email"`
			FullName string `json:"full_name"`
			Password string `json:"password"`
			Role     string `json:"role"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.Username == "" || req.Email == "" || req.Password == "" {
			http.Error(w, "username, email and password are required", http.StatusBadRequest)
			return
		}
		role := req.Role
		if role == "" {
			role = "student"
		}
		if role != "student" && role != "instructor" {
			http.Error(w, "role must be student or instructor", http.StatusBadRequest)
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			http.Error(w, "hash password", http.StatusInternalServerError)
			return
		}

		ctx := r.Context()
		tx, err := a.db.BeginTx(ctx, nil)
		if err != nil {
			http.Error(w, "begin tx", http.StatusInternalServerError)
			return
		}
		defer tx.Rollback()

		var userID int64
		err = tx.QueryRowContext(ctx,
			`INSERT INTO users (username, email, full_name, password_hash, role, created_at)
			 VALUES ($1,$2,$3,$4,$5,$6) RETURNING id`,
			req.Username, req.Email, req.FullName, string(hash), role, time.Now().Unix()).Scan(&userID)
		if err != nil {
			http.Error(w, "username or email already taken", http.StatusConflict)
			return
		}

		var studentID int64
		if role == "student" {
			err = tx.QueryRowContext(ctx,
				`INSERT INTO students (full_name, email, user_id) VALUES ($1,$2,$3) RETURNING id`,
				req.FullName, req.Email, userID).Scan(&studentID)
			if err != nil {
				http.Error(w, "create student", http.StatusInternalServerError)
				return
			}
		}
		if err := tx.Commit(); err != nil {
			http.Error(w, "commit", http.StatusInternalServerError)
			return
		}

		a.mail.SendWelcome(req.Email, req.FullName)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":         userID,
			"student_id": studentID,
			"role":       role,
		})
	}
}

// JWTMiddleware validates the bearer token and attaches the subject, role and
// student id to the request context.
func JWTMiddleware(a *AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if !strings.HasPrefix(h, "Bearer ") {
				http.Error(w, "missing bearer", http.StatusUnauthorized)
				return
			}
			claims, err := a.Parse(strings.TrimPrefix(h, "Bearer "))
			if err != nil || claims == nil {
				http.Error(w, "bad token", http.StatusUnauthorized)
				return
			}
			ctx := rbac.WithSubject(r.Context(), claims.Sub)
			ctx = rbac.WithRole(ctx, claims.Role)
			ctx = WithStudentID(ctx, claims.StudentID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
