package models

import "errors"

var (
	// ErrValidation некорректный или выходящий за границы ввод; шаг диалога повторяется
	ErrValidation = errors.New("некорректный ввод")
	// ErrExternalUnavailable внешний сервис (погода, база продуктов) недоступен
	ErrExternalUnavailable = errors.New("внешний сервис недоступен")
	// ErrMissingProfile профиль пользователя ещё не настроен
	ErrMissingProfile = errors.New("профиль не настроен")
	// ErrStateCorruption в состоянии диалога нет ожидаемых данных
	ErrStateCorruption = errors.New("повреждено состояние диалога")
)
