// Package dto contains Data Transfer Objects for HTTP requests and responses.
//
// Request types decode into pointer fields so that an absent field can be
// told apart from a zero value. Only the fields declared here are read;
// anything else in the body is ignored.
package dto
