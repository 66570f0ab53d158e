package graphql

import (
	"context"

	"github.com/darasahq/darasa/core/identity"
)

// User and role management operations.
const (
	usersDoc = `query Users {
  users { id name email role { name id } }
}`

	userDoc = `query User($id: ID!) {
  user(id: $id) { id name email role { id name } }
}`

	createUserDoc = `mutation CreateUser($input: CreateUserInput!) {
  createUser(input: $input) { id name email role { id name } }
}`

	updateUserDoc = `mutation UpdateUser($id: ID!, $input: UpdateUserInput!) {
  updateUser(id: $id, input: $input) { id name email role { name id } }
}`

	deleteUserDoc = `mutation DeleteUser($id: ID!) {
  deleteUser(id: $id)
}`

	rolesDoc = `query Roles {
  roles { id name }
}`

	createRoleDoc = `mutation CreateRole($name: String!) {
  createRole(name: $name) { id name }
}`

	updateRoleDoc = `mutation UpdateRole($id: ID!, $name: String!) {
  updateRole(id: $id, name: $name) { id name }
}`

	deleteRoleDoc = `mutation DeleteRole($id: ID!) {
  deleteRole(id: $id)
}`
)

// Users lists all accounts with their role.
func (c *Client) Users(ctx context.Context) ([]identity.Identity, error) {
	var out struct {
		Users []identity.Identity `json:"users"`
	}
	err := c.Do(ctx, usersDoc, "Users", nil, &out)
	return out.Users, err
}

func (c *Client) User(ctx context.Context, id string) (identity.Identity, error) {
	var out struct {
		User identity.Identity `json:"user"`
	}
	err := c.Do(ctx, userDoc, "User", map[string]interface{}{"id": id}, &out)
	return out.User, err
}

type CreateUserInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	RoleName string `json:"roleName" validate:"required"`
}

func (c *Client) CreateUser(ctx context.Context, input CreateUserInput) (identity.Identity, error) {
	var out struct {
		CreateUser identity.Identity `json:"createUser"`
	}
	err := c.Do(ctx, createUserDoc, "CreateUser", map[string]interface{}{"input": input}, &out)
	return out.CreateUser, err
}

// UpdateUserInput carries only the fields to change; zero fields are omitted.
type UpdateUserInput struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	RoleName string `json:"roleName,omitempty"`
}

func (c *Client) UpdateUser(ctx context.Context, id string, input UpdateUserInput) (identity.Identity, error) {
	var out struct {
		UpdateUser identity.Identity `json:"updateUser"`
	}
	vars := map[string]interface{}{"id": id, "input": input}
	err := c.Do(ctx, updateUserDoc, "UpdateUser", vars, &out)
	return out.UpdateUser, err
}

func (c *Client) DeleteUser(ctx context.Context, id string) (bool, error) {
	var out struct {
		DeleteUser bool `json:"deleteUser"`
	}
	err := c.Do(ctx, deleteUserDoc, "DeleteUser", map[string]interface{}{"id": id}, &out)
	return out.DeleteUser, err
}

// Roles lists the role catalog.
func (c *Client) Roles(ctx context.Context) ([]identity.RoleRef, error) {
	var out struct {
		Roles []identity.RoleRef `json:"roles"`
	}
	err := c.Do(ctx, rolesDoc, "Roles", nil, &out)
	return out.Roles, err
}

func (c *Client) CreateRole(ctx context.Context, name string) (identity.RoleRef, error) {
	var out struct {
		CreateRole identity.RoleRef `json:"createRole"`
	}
	err := c.Do(ctx, createRoleDoc, "CreateRole", map[string]interface{}{"name": name}, &out)
	return out.CreateRole, err
}

func (c *Client) UpdateRole(ctx context.Context, id, name string) (identity.RoleRef, error) {
	var out struct {
		UpdateRole identity.RoleRef `json:"updateRole"`
	}
	err := c.Do(ctx, updateRoleDoc, "UpdateRole", map[string]interface{}{"id": id, "name": name}, &out)
	return out.UpdateRole, err
}

func (c *Client) DeleteRole(ctx context.Context, id string) (bool, error) {
	var out struct {
		DeleteRole bool `json:"deleteRole"`
	}
	err := c.Do(ctx, deleteRoleDoc, "DeleteRole", map[string]interface{}{"id": id}, &out)
	return out.DeleteRole, err
}
