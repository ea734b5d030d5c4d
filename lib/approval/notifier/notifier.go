package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	approvalapimodels "approvals-backend/models/api/approval"
)

// ErrTransportFailure - внешний сервис не ответил (сетевая ошибка или таймаут).
// К этому моменту решение по заявке уже зафиксировано в БД
var ErrTransportFailure = errors.New("внешний сервис недоступен")

const (
	sendTimeout    = 30 * time.Second
	defaultMessage = "обработано"
)

// Outcome - результат доставки решения во внешний сервис
type Outcome struct {
	OK      bool
	Message string
}

type Provider interface {
	Send(ctx context.Context, data map[string]interface{}) (Outcome, error)
}

var Instance Provider

func NewProvider(externalURL string) {
	Instance = &impl{
		url: externalURL,
		client: &http.Client{
			Timeout: sendTimeout,
		},
	}
}

type impl struct {
	url    string
	client *http.Client
}

func (i impl) Send(ctx context.Context, data map[string]interface{}) (Outcome, error) {
	logger := log.WithField("external_request", i.url)
	body, err := json.Marshal(data)
	if err != nil {
		logger.WithError(err).Error("ошибка сериализации данных заявки")
		return Outcome{}, errors.Wrap(err, "ошибка сериализации данных заявки")
	}
	r, err := http.NewRequestWithContext(ctx, http.MethodPost, i.url, bytes.NewReader(body))
	if err != nil {
		logger.WithError(err).Error("ошибка формирования запроса во внешний сервис")
		return Outcome{}, errors.Wrap(err, "ошибка формирования запроса во внешний сервис")
	}
	r.Header.Add("Content-Type", "application/json")

	response, err := i.client.Do(r)
	responseBody, logger := getResponseBody(logger, response)
	logger = addStatusCode(logger, response)
	if err != nil {
		logger.WithError(err).Error("ошибка отправки запроса во внешний сервис")
		return Outcome{}, errors.Wrap(ErrTransportFailure, err.Error())
	}
	if response.StatusCode == http.StatusOK {
		outcome := Outcome{
			OK:      true,
			Message: defaultMessage,
		}
		resp := approvalapimodels.ExternalResponse{}
		if responseBody != nil {
			if err = json.Unmarshal(responseBody, &resp); err != nil {
				logger.WithError(err).Warn("ошибка распознавания ответа внешнего сервиса")
			}
		}
		if resp.Message != "" {
			outcome.Message = resp.Message
		}
		logger.Debug("данные заявки отправлены во внешний сервис")
		return outcome, nil
	}
	logger.Error("внешний сервис вернул некорректный статус")
	return Outcome{OK: false}, nil
}

func getResponseBody(logger *log.Entry, response *http.Response) ([]byte, *log.Entry) {
	if response != nil {
		responseBody, _ := io.ReadAll(response.Body)
		return responseBody, logger.WithField("response_body", string(responseBody))
	}
	return nil, logger
}

func addStatusCode(logger *log.Entry, response *http.Response) *log.Entry {
	if response != nil {
		return logger.WithField("response_status_code", response.StatusCode)
	}
	return logger
}
