package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"worktrack-backend/internal/middleware"
	"worktrack-backend/internal/models"
	"worktrack-backend/pkg/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// UserStore is the credential storage the auth handlers need. A missing user
// is (nil, nil), not an error.
type UserStore interface {
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	UserType string `json:"userType"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Message string               `json:"message"`
	User    *models.UserResponse `json:"user,omitempty"`
	Token   string               `json:"token,omitempty"`
}

// Register creates a new worker or manager account. Registering a username
// that already exists fails without touching the stored credential record.
func Register(store UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondMessage(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		req.Username = strings.ToLower(strings.TrimSpace(req.Username))
		if req.Username == "" || req.Password == "" {
			utils.RespondMessage(w, http.StatusBadRequest, "Username and password are required")
			return
		}
		if req.UserType != models.UserTypeWorker && req.UserType != models.UserTypeManager {
			utils.RespondMessage(w, http.StatusBadRequest, "userType must be 'Worker' or 'Manager'")
			return
		}

		log.Printf("📥 Registration attempt: %s (%s)", req.Username, req.UserType)

		existing, err := store.GetUserByUsername(r.Context(), req.Username)
		if err != nil {
			log.Printf("❌ Database error during registration: %v", err)
			utils.RespondMessage(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		if existing != nil {
			log.Printf("❌ Username already exists: %s", req.Username)
			utils.RespondMessage(w, http.StatusBadRequest, "Username already exists")
			return
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("❌ Failed to hash password: %v", err)
			utils.RespondMessage(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		now := time.Now().Unix()
		user := &models.User{
			ID:        uuid.New().String(),
			Username:  req.Username,
			Password:  string(hashed),
			UserType:  req.UserType,
			CreatedAt: now,
			UpdatedAt: now,
		}

		if err := store.CreateUser(r.Context(), user); err != nil {
			log.Printf("❌ Failed to create user: %v", err)
			utils.RespondMessage(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		log.Printf("✅ User registered: %s (%s)", user.Username, user.UserType)
		utils.RespondMessage(w, http.StatusOK, "User registered successfully")
	}
}

// Login checks credentials and issues a JWT for the supplemental
// authenticated endpoints.
func Login(store UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondMessage(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		req.Username = strings.ToLower(strings.TrimSpace(req.Username))
		log.Printf("🔐 Login attempt for: %s", req.Username)

		user, err := store.GetUserByUsername(r.Context(), req.Username)
		if err != nil {
			log.Printf("❌ Database error during login: %v", err)
			utils.RespondMessage(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		if user == nil {
			log.Printf("❌ User not found: %s", req.Username)
			utils.RespondJSON(w, http.StatusUnauthorized, LoginResponse{
				Message: "Login failed. Incorrect username or password.",
			})
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			log.Printf("❌ Invalid password for: %s", req.Username)
			utils.RespondJSON(w, http.StatusUnauthorized, LoginResponse{
				Message: "Login failed. Incorrect username or password.",
			})
			return
		}

		jwtSecret := os.Getenv("APP_JWT_SECRET")
		if jwtSecret == "" {
			log.Println("❌ JWT secret not configured")
			utils.RespondMessage(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"user_id":   user.ID,
			"username":  user.Username,
			"user_type": user.UserType,
			"iat":       time.Now().Unix(),
			"exp":       time.Now().Add(7 * 24 * time.Hour).Unix(),
		})

		tokenString, err := token.SignedString([]byte(jwtSecret))
		if err != nil {
			log.Println("❌ Failed to create token")
			utils.RespondMessage(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		userResponse := user.ToUserResponse()
		log.Printf("✅ Login successful: %s (%s)", user.Username, user.UserType)

		utils.RespondJSON(w, http.StatusOK, LoginResponse{
			Message: "Login successful",
			User:    &userResponse,
			Token:   tokenString,
		})
	}
}

// GetAuthStatus returns the claims of the authenticated user. Requires the
// Auth middleware.
func GetAuthStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"user":    userClaims,
		})
	}
}
