package api

import (
	"fmt"
	"net/http"
)

// Вид ошибки при обращении к API.
// Для пользователя все они сводятся к одному сообщению, но вызывающий код может их различать
type Kind int

const (
	// Запрос не дошел или ответ не был прочитан
	KindNetwork Kind = iota + 1
	// Сервер ответил не 2xx
	KindStatus
	// Тело ответа не является корректным JSON
	KindDecode
	// JSON корректный, но конверт не тот: success=false или нет нужных полей
	KindPayload
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindStatus:
		return "status"
	case KindDecode:
		return "decode"
	case KindPayload:
		return "payload"
	default:
		return "unknown"
	}
}

type Error struct {
	Kind Kind
	// Операция клиента, например "articles" или "article"
	Op string
	// HTTP статус, заполнен только для KindStatus
	Status int
	Err    error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindStatus:
		return fmt.Sprintf("%s: server responded %d %s", e.Op, e.Status, http.StatusText(e.Status))
	case KindNetwork:
		return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
	case KindDecode:
		return fmt.Sprintf("%s: malformed response: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: unexpected payload: %v", e.Op, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}
