package service

import (
	"context"
	"testing"

	"cajacontrol/internal/config"
	"cajacontrol/internal/dto"
	"cajacontrol/internal/model"
	"cajacontrol/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsuarioRepo struct {
	usuarios map[uuid.UUID]*model.Usuario
}

func newFakeUsuarioRepo() *fakeUsuarioRepo {
	return &fakeUsuarioRepo{usuarios: make(map[uuid.UUID]*model.Usuario)}
}

func (r *fakeUsuarioRepo) Create(_ context.Context, u *model.Usuario) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.usuarios[u.ID] = u
	return nil
}

func (r *fakeUsuarioRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Usuario, error) {
	u, ok := r.usuarios[id]
	if !ok {
		return nil, errNotFound
	}
	return u, nil
}

func (r *fakeUsuarioRepo) FindByUsername(_ context.Context, username string) (*model.Usuario, error) {
	for _, u := range r.usuarios {
		if u.Username == username && u.Activo {
			return u, nil
		}
	}
	return nil, errNotFound
}

func (r *fakeUsuarioRepo) List(_ context.Context, incluirInactivos bool) ([]model.Usuario, error) {
	var out []model.Usuario
	for _, u := range r.usuarios {
		if !incluirInactivos && !u.Activo {
			continue
		}
		out = append(out, *u)
	}
	return out, nil
}

func (r *fakeUsuarioRepo) Update(_ context.Context, u *model.Usuario) error {
	r.usuarios[u.ID] = u
	return nil
}

var _ repository.UsuarioRepository = (*fakeUsuarioRepo)(nil)

func authTestConfig() *config.Config {
	return &config.Config{
		JWTSecret:          "secreto-de-prueba",
		JWTExpirationHours: 8,
		JWTRefreshHours:    168,
	}
}

func TestLoginYRefresh(t *testing.T) {
	repo := newFakeUsuarioRepo()
	svc := NewAuthService(repo, authTestConfig())

	creado, err := svc.CrearUsuario(context.Background(), dto.CrearUsuarioRequest{
		Username: "mruiz",
		Password: "clave-segura-123",
		Nombre:   "María Ruiz",
		Rol:      model.RolCajero,
	})
	require.NoError(t, err)
	assert.Equal(t, model.RolCajero, creado.Rol)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{
		Username: "mruiz",
		Password: "clave-segura-123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, 8*3600, resp.ExpiresIn)

	renovado, err := svc.Refresh(context.Background(), resp.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, creado.ID, renovado.User.ID)
}

func TestLoginPasswordIncorrecto(t *testing.T) {
	repo := newFakeUsuarioRepo()
	svc := NewAuthService(repo, authTestConfig())

	_, err := svc.CrearUsuario(context.Background(), dto.CrearUsuarioRequest{
		Username: "mruiz",
		Password: "clave-segura-123",
		Nombre:   "María Ruiz",
		Rol:      model.RolCajero,
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), dto.LoginRequest{
		Username: "mruiz",
		Password: "otra-clave",
	})
	assert.ErrorContains(t, err, "credenciales invalidas")
}

func TestRefreshDeUsuarioDesactivadoFalla(t *testing.T) {
	repo := newFakeUsuarioRepo()
	svc := NewAuthService(repo, authTestConfig())

	creado, err := svc.CrearUsuario(context.Background(), dto.CrearUsuarioRequest{
		Username: "jgomez",
		Password: "clave-segura-123",
		Nombre:   "Julián Gómez",
		Rol:      model.RolSupervisor,
	})
	require.NoError(t, err)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{
		Username: "jgomez",
		Password: "clave-segura-123",
	})
	require.NoError(t, err)

	require.NoError(t, svc.DesactivarUsuario(context.Background(), mustUUID(t, creado.ID)))

	_, err = svc.Refresh(context.Background(), resp.RefreshToken)
	assert.ErrorContains(t, err, "inactivo")
}

func TestListarUsuariosFiltraInactivos(t *testing.T) {
	repo := newFakeUsuarioRepo()
	svc := NewAuthService(repo, authTestConfig())

	activo, err := svc.CrearUsuario(context.Background(), dto.CrearUsuarioRequest{
		Username: "activo1", Password: "clave-segura-123", Nombre: "Uno", Rol: model.RolCajero,
	})
	require.NoError(t, err)
	inactivo, err := svc.CrearUsuario(context.Background(), dto.CrearUsuarioRequest{
		Username: "baja1", Password: "clave-segura-123", Nombre: "Dos", Rol: model.RolCajero,
	})
	require.NoError(t, err)
	require.NoError(t, svc.DesactivarUsuario(context.Background(), mustUUID(t, inactivo.ID)))

	users, err := svc.ListarUsuarios(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, activo.ID, users[0].ID)

	users, err = svc.ListarUsuarios(context.Background(), true)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}
