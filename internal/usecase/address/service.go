package address

import (
	"context"

	"github.com/google/uuid"

	"logipro/internal/authz"
	domainAddress "logipro/internal/domain/address"
	"logipro/internal/domain/uow"
	appErrors "logipro/pkg/errors"
	"logipro/pkg/utils"
)

// Service manages a customer's own address book. Every call is scoped to
// the calling customer.
type Service struct {
	tx          uow.Manager
	addressRepo domainAddress.Repository
}

func NewService(tx uow.Manager, addressRepo domainAddress.Repository) *Service {
	return &Service{tx: tx, addressRepo: addressRepo}
}

func (s *Service) Create(ctx context.Context, actor authz.Principal, req *CreateAddressRequest) (*AddressResponse, error) {
	if err := requireCustomer(actor); err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation("Invalid input", err)
	}

	a := &domainAddress.Address{
		CustomerID: actor.UserID,
		Label:      domainAddress.Label(req.Label),
		Name:       utils.SanitizeString(req.Name),
		Address1:   utils.SanitizeString(req.Address1),
		Address2:   utils.SanitizeOptional(req.Address2),
		City:       utils.SanitizeString(req.City),
		State:      utils.SanitizeString(req.State),
		ZipCode:    utils.SanitizeString(req.ZipCode),
		IsDefault:  req.IsDefault,
	}
	if req.Phone != nil {
		phone := utils.SanitizePhone(*req.Phone)
		a.Phone = &phone
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context, repos uow.Repositories) error {
		if a.IsDefault {
			if err := repos.Addresses.ClearDefault(ctx, a.CustomerID, uuid.Nil); err != nil {
				return err
			}
		}
		return repos.Addresses.Create(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	return ToAddressResponse(a), nil
}

func (s *Service) Get(ctx context.Context, actor authz.Principal, addressID uuid.UUID) (*AddressResponse, error) {
	if err := requireCustomer(actor); err != nil {
		return nil, err
	}
	a, err := s.addressRepo.Get(ctx, actor.UserID, addressID)
	if err != nil {
		return nil, err
	}
	return ToAddressResponse(a), nil
}

// List returns the default address first, then newest first.
func (s *Service) List(ctx context.Context, actor authz.Principal) ([]*AddressResponse, error) {
	if err := requireCustomer(actor); err != nil {
		return nil, err
	}
	addresses, err := s.addressRepo.List(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	items := make([]*AddressResponse, len(addresses))
	for i, a := range addresses {
		items[i] = ToAddressResponse(a)
	}
	return items, nil
}

func (s *Service) Update(ctx context.Context, actor authz.Principal, addressID uuid.UUID, req *UpdateAddressRequest) (*AddressResponse, error) {
	if err := requireCustomer(actor); err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation("Invalid input", err)
	}

	var updated *domainAddress.Address
	err := s.tx.WithinTx(ctx, func(ctx context.Context, repos uow.Repositories) error {
		a, err := repos.Addresses.Get(ctx, actor.UserID, addressID)
		if err != nil {
			return err
		}
		applyUpdate(a, req)

		if a.IsDefault {
			if err := repos.Addresses.ClearDefault(ctx, a.CustomerID, a.ID); err != nil {
				return err
			}
		}
		if err := repos.Addresses.Update(ctx, a); err != nil {
			return err
		}
		updated = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ToAddressResponse(updated), nil
}

func (s *Service) Delete(ctx context.Context, actor authz.Principal, addressID uuid.UUID) error {
	if err := requireCustomer(actor); err != nil {
		return err
	}
	return s.addressRepo.Delete(ctx, actor.UserID, addressID)
}

func applyUpdate(a *domainAddress.Address, req *UpdateAddressRequest) {
	if req.Label != nil {
		a.Label = domainAddress.Label(*req.Label)
	}
	if req.Name != nil {
		a.Name = utils.SanitizeString(*req.Name)
	}
	if req.Address1 != nil {
		a.Address1 = utils.SanitizeString(*req.Address1)
	}
	if req.Address2 != nil {
		a.Address2 = utils.SanitizeOptional(req.Address2)
	}
	if req.City != nil {
		a.City = utils.SanitizeString(*req.City)
	}
	if req.State != nil {
		a.State = utils.SanitizeString(*req.State)
	}
	if req.ZipCode != nil {
		a.ZipCode = utils.SanitizeString(*req.ZipCode)
	}
	if req.Phone != nil {
		phone := utils.SanitizePhone(*req.Phone)
		a.Phone = &phone
	}
	if req.IsDefault != nil {
		a.IsDefault = *req.IsDefault
	}
}

func requireCustomer(actor authz.Principal) error {
	if actor.Role != authz.RoleCustomer {
		return appErrors.ErrInsufficientPermissions
	}
	return nil
}
