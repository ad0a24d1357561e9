package services

import (
	"context"
	"fmt"
	"strings"

	"rumbo/internal/models/db_models"
	"rumbo/internal/models/request_models"
	"rumbo/internal/models/response_models"
	"rumbo/internal/repositories"
	"rumbo/pkg/utils"
)

type AccountServiceInterface interface {
	Register(ctx context.Context, req request_models.RegisterRequest) (*response_models.AccountResponse, error)
	Login(ctx context.Context, req request_models.LoginRequest) (*response_models.AccountResponse, error)
}

type AccountService struct {
	repo repositories.AccountRepository
}

func NewAccountService(repo repositories.AccountRepository) AccountServiceInterface {
	return &AccountService{repo: repo}
}

func (s *AccountService) Register(ctx context.Context, req request_models.RegisterRequest) (*response_models.AccountResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: email already registered", utils.ErrValidation)
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	account := &db_models.Account{
		Email:        email,
		PasswordHash: hash,
		DisplayName:  req.DisplayName,
		Role:         "user",
	}
	if err := s.repo.Create(ctx, account); err != nil {
		return nil, err
	}

	token, err := utils.CreateToken(account.ID, account.Role)
	if err != nil {
		return nil, err
	}

	return &response_models.AccountResponse{
		ID:          account.ID.String(),
		Email:       account.Email,
		DisplayName: account.DisplayName,
		Token:       token,
	}, nil
}

func (s *AccountService) Login(ctx context.Context, req request_models.LoginRequest) (*response_models.AccountResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	account, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, fmt.Errorf("%w: invalid credentials", utils.ErrValidation)
	}
	if err := utils.ComparePasswords(account.PasswordHash, req.Password); err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", utils.ErrValidation)
	}

	token, err := utils.CreateToken(account.ID, account.Role)
	if err != nil {
		return nil, err
	}

	return &response_models.AccountResponse{
		ID:          account.ID.String(),
		Email:       account.Email,
		DisplayName: account.DisplayName,
		Token:       token,
	}, nil
}
