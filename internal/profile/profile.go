// Package profile ships the install-profile metadata Omega was
// distributed with: the default content types and the administrator
// role. The definitions are embedded as YAML and exposed verbatim.
package profile

import (
	_ "embed"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed data/node_types.yml
var nodeTypesYAML []byte

//go:embed data/roles.yml
var rolesYAML []byte

// NodeType describes a content type installed by the profile.
type NodeType struct {
	Type        string `yaml:"type"`
	Name        string `yaml:"name"`
	Base        string `yaml:"base"`
	Description string `yaml:"description"`
	HasTitle    bool   `yaml:"has_title"`
	TitleLabel  string `yaml:"title_label"`
	Custom      bool   `yaml:"custom"`
	Modified    bool   `yaml:"modified"`
	Locked      bool   `yaml:"locked"`
}

// Role describes a user role installed by the profile.
type Role struct {
	Name   string `yaml:"name"`
	Weight int    `yaml:"weight"`
}

var (
	once      sync.Once
	nodeTypes []NodeType
	roles     []Role
	loadErr   error
)

func load() {
	once.Do(func() {
		if err := yaml.Unmarshal(nodeTypesYAML, &nodeTypes); err != nil {
			loadErr = err
			return
		}
		loadErr = yaml.Unmarshal(rolesYAML, &roles)
	})
}

// NodeTypes returns the content types shipped with the profile.
func NodeTypes() ([]NodeType, error) {
	load()
	return nodeTypes, loadErr
}

// Roles returns the roles shipped with the profile.
func Roles() ([]Role, error) {
	load()
	return roles, loadErr
}
