package service

import "github.com/Lixing-Zhang/graze-api/internal/repository"

// ErrNotFound is returned when a requested record is absent, inactive or unavailable.
var ErrNotFound = repository.ErrNotFound
