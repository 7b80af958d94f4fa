//go:build !dev

package authclient

const devBuild = false
