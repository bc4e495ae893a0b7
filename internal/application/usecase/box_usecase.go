package usecase

import (
	"context"

	"github.com/jhoicas/marketbox-api/internal/application/dto"
	"github.com/jhoicas/marketbox-api/internal/domain/entity"
	"github.com/jhoicas/marketbox-api/internal/domain/repository"
)

// BoxUseCase lectura del catálogo maestro de cajas.
type BoxUseCase struct {
	repo repository.BoxRepository
}

// NewBoxUseCase construye el caso de uso.
func NewBoxUseCase(repo repository.BoxRepository) *BoxUseCase {
	return &BoxUseCase{repo: repo}
}

// List devuelve todas las cajas disponibles para pedir.
func (uc *BoxUseCase) List(ctx context.Context) (*dto.BoxListResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]dto.BoxResponse, 0, len(list))
	for _, b := range list {
		items = append(items, toBoxResponse(b))
	}
	return &dto.BoxListResponse{Items: items}, nil
}

func toBoxResponse(b *entity.Box) dto.BoxResponse {
	return dto.BoxResponse{ID: b.ID, Name: b.Name, Price: b.Price, Size: b.Size}
}
