package repository

import "errors"

var (
	// ErrUserNotFound возвращается, когда запись пользователя не найдена.
	ErrUserNotFound = errors.New("user not found")
	// ErrPhoneTaken телефон уже занят другим пользователем.
	ErrPhoneTaken = errors.New("phone already registered")
	// ErrSessionNotFound сессия с таким refresh токеном отсутствует.
	ErrSessionNotFound = errors.New("session not found")

	// ErrBrandNotFound бренд не найден или принадлежит другому пользователю.
	ErrBrandNotFound = errors.New("brand not found")
	// ErrBrandNameTaken имя бренда уже занято.
	ErrBrandNameTaken = errors.New("brand name already exists")
	// ErrNoActiveBrand у пользователя не выбран активный бренд.
	ErrNoActiveBrand = errors.New("no active brand")

	ErrChannelNotFound = errors.New("channel not found")
)
