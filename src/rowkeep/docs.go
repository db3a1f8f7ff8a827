// Package main rowkeep API
//
// @title           rowkeep API
// @version         1.0
// @description     Schema-driven table repositories - read, write and export rows of registered SQL tables.
//
// @host            localhost:8080
// @BasePath        /
// @schemes         http https
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer token authentication. Prefix the token with "Bearer ".
package main
