package service_test

import (
	"context"
	"testing"

	"fisiogest/internal/apierror"
	"fisiogest/internal/config"
	"fisiogest/internal/dto"
	"fisiogest/internal/model"
	"fisiogest/internal/repository"
	"fisiogest/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubUsuarioRepo struct {
	usuarios map[uuid.UUID]*model.Usuario
}

func newStubUsuarioRepo() *stubUsuarioRepo {
	return &stubUsuarioRepo{usuarios: make(map[uuid.UUID]*model.Usuario)}
}

func (r *stubUsuarioRepo) Create(_ context.Context, u *model.Usuario) error {
	for _, existente := range r.usuarios {
		if existente.Username == u.Username {
			return gorm.ErrDuplicatedKey
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.usuarios[u.ID] = u
	return nil
}

func (r *stubUsuarioRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Usuario, error) {
	u, ok := r.usuarios[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *stubUsuarioRepo) FindByUsername(_ context.Context, username string) (*model.Usuario, error) {
	for _, u := range r.usuarios {
		if u.Username == username && u.Activo {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUsuarioRepo) List(_ context.Context, incluirInactivos bool) ([]model.Usuario, error) {
	var out []model.Usuario
	for _, u := range r.usuarios {
		if u.Activo || incluirInactivos {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *stubUsuarioRepo) Desactivar(_ context.Context, id uuid.UUID) error {
	u, ok := r.usuarios[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Activo = false
	return nil
}

var _ repository.UsuarioRepository = (*stubUsuarioRepo)(nil)

func buildAuthSvc() (service.AuthService, *stubUsuarioRepo) {
	repo := newStubUsuarioRepo()
	cfg := &config.Config{
		JWTSecret:          "secreto-de-prueba",
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
	}
	return service.NewAuthService(repo, cfg), repo
}

func TestLoginYRefresh(t *testing.T) {
	svc, _ := buildAuthSvc()
	ctx := context.Background()

	_, err := svc.CrearUsuario(ctx, dto.CrearUsuarioRequest{
		Username: "ana", Nombre: "Ana García", Password: "secreta123", Rol: "fisioterapeuta",
	})
	require.NoError(t, err)

	login, err := svc.Login(ctx, dto.LoginRequest{Username: "ana", Password: "secreta123"})
	require.NoError(t, err)
	assert.NotEmpty(t, login.AccessToken)
	assert.NotEmpty(t, login.RefreshToken)
	assert.Equal(t, "bearer", login.TokenType)
	assert.Equal(t, 8*3600, login.ExpiresIn)
	assert.Equal(t, "fisioterapeuta", login.User.Rol)

	refrescado, err := svc.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refrescado.AccessToken)
	assert.Equal(t, login.User.ID, refrescado.User.ID)
}

func TestLoginCredencialesInvalidas(t *testing.T) {
	svc, _ := buildAuthSvc()
	ctx := context.Background()

	_, err := svc.CrearUsuario(ctx, dto.CrearUsuarioRequest{
		Username: "ana", Nombre: "Ana", Password: "secreta123", Rol: "admin",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, dto.LoginRequest{Username: "ana", Password: "incorrecta"})
	assert.EqualError(t, err, "credenciales invalidas")

	_, err = svc.Login(ctx, dto.LoginRequest{Username: "nadie", Password: "x"})
	assert.EqualError(t, err, "credenciales invalidas")
}

func TestRefreshRechazaTokenInvalido(t *testing.T) {
	svc, _ := buildAuthSvc()

	_, err := svc.Refresh(context.Background(), "no-es-un-jwt")
	assert.Error(t, err)
}

func TestDesactivarUsuarioBloqueaLoginYRefresh(t *testing.T) {
	svc, _ := buildAuthSvc()
	ctx := context.Background()

	creado, err := svc.CrearUsuario(ctx, dto.CrearUsuarioRequest{
		Username: "ana", Nombre: "Ana", Password: "secreta123", Rol: "recepcion",
	})
	require.NoError(t, err)
	login, err := svc.Login(ctx, dto.LoginRequest{Username: "ana", Password: "secreta123"})
	require.NoError(t, err)

	require.NoError(t, svc.DesactivarUsuario(ctx, uuid.MustParse(creado.ID)))

	_, err = svc.Login(ctx, dto.LoginRequest{Username: "ana", Password: "secreta123"})
	assert.Error(t, err)
	_, err = svc.Refresh(ctx, login.RefreshToken)
	assert.Error(t, err)

	activos, err := svc.ListarUsuarios(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, activos)
	todos, err := svc.ListarUsuarios(ctx, true)
	require.NoError(t, err)
	assert.Len(t, todos, 1)
}

func TestCrearUsuarioDuplicado(t *testing.T) {
	svc, _ := buildAuthSvc()
	ctx := context.Background()

	_, err := svc.CrearUsuario(ctx, dto.CrearUsuarioRequest{
		Username: "ana", Nombre: "Ana", Password: "secreta123", Rol: "admin",
	})
	require.NoError(t, err)

	_, err = svc.CrearUsuario(ctx, dto.CrearUsuarioRequest{
		Username: "ana", Nombre: "Clon", Password: "secreta123", Rol: "admin",
	})
	require.Error(t, err)
	assert.True(t, apierror.IsConflicto(err))
	assert.Contains(t, err.Error(), "ana")
}
