package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/holdings-api/internal/application/dto"
	"github.com/jhoicas/holdings-api/internal/domain"
	"github.com/jhoicas/holdings-api/internal/domain/entity"
	"github.com/jhoicas/holdings-api/internal/domain/repository"
	"github.com/jhoicas/holdings-api/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de autenticación: registro y login, incluyendo las
// variantes por wallet address (la dirección se convierte en el email derivado
// <address>@base.com y actúa también como password del registro).
type AuthUseCase struct {
	userRepo repository.UserRepository
	jwtCfg   JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, jwtCfg: jwtCfg}
}

// RegisterUser crea un usuario: hashea password con bcrypt y persiste.
// Devuelve ErrEmailAlreadyExists si el email ya está registrado.
func (uc *AuthUseCase) RegisterUser(in dto.RegisterRequest) (*dto.UserResponse, error) {
	if in.Email == "" || in.Password == "" {
		return nil, domain.ErrInvalidInput
	}
	existing, err := uc.userRepo.GetByEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	username := in.Username
	if username == "" {
		username = in.Email
	}
	user := &entity.User{
		ID:           uuid.New().String(),
		Email:        in.Email,
		Username:     username,
		PasswordHash: string(hash),
		Verified:     false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.userRepo.Create(user); err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// RegisterWithAddress registra un usuario a partir de una wallet address EVM.
// La identidad queda direccionable por el email derivado; ver domain.Identity.
func (uc *AuthUseCase) RegisterWithAddress(address string) (*dto.UserResponse, error) {
	if !domain.IsWalletAddress(address) {
		return nil, domain.ErrInvalidInput
	}
	return uc.RegisterUser(dto.RegisterRequest{
		Email:    domain.EmailFromWalletAddress(address),
		Username: address,
		Password: address,
	})
}

// Login verifica email/password, genera JWT y retorna token + usuario.
func (uc *AuthUseCase) Login(in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.userRepo.GetByEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Email, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token: token,
		User:  *toUserResponse(user),
	}, nil
}

// LoginWithAddress valida el formato de la dirección y loguea con las
// credenciales derivadas.
func (uc *AuthUseCase) LoginWithAddress(address string) (*dto.LoginResponse, error) {
	if !domain.IsWalletAddress(address) {
		return nil, domain.ErrInvalidInput
	}
	return uc.Login(dto.LoginRequest{
		Email:    domain.EmailFromWalletAddress(address),
		Password: address,
	})
}

func toUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		Verified:  u.Verified,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
