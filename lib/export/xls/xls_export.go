package xlsexport

import (
	"bytes"
	"fmt"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	dbmodels "approvals-backend/models/db"
)

type Provider interface {
	ExportApprovalList(list []dbmodels.Approval) (*bytes.Buffer, error)
}

var Instance Provider

func NewHandler() {
	Instance = impl{}
}

type impl struct{}

var approvalHeaders = []string{"Заголовок", "Заявитель", "Согласующий", "Статус", "Дата подачи", "Дата обработки", "Содержимое"}

func (i impl) ExportApprovalList(list []dbmodels.Approval) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.WithError(err).Error("ошибка закрытия файла")
		}
	}()
	sheet := "Sheet1"
	row := 0
	row, err := writeHeader(f, sheet, row, approvalHeaders)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка формирования заголовка в xlsx")
	}
	if len(list) != 0 {
		row, err = writeApprovalData(f, sheet, list, row)
		if err != nil {
			return nil, errors.Wrap(err, "ошибка формирования таблицы с данными в xlsx")
		}
	}
	f.SetSheetName(sheet, "Заявки")
	return f.WriteToBuffer()
}

func writeApprovalData(f *excelize.File, sheet string, list []dbmodels.Approval, row int) (int, error) {
	if err := applyDataCellStyle(f, sheet, 1, row+1, len(approvalHeaders), len(list)+1); err != nil {
		return row, err
	}
	for _, item := range list {
		row++
		// "Заголовок"
		col := 1
		if err := writeColumn(f, sheet, col, row, item.Title); err != nil {
			return row, err
		}

		// "Заявитель"
		col++
		if item.Applicant != nil {
			if err := writeColumn(f, sheet, col, row, fmt.Sprintf("%v\r%v", item.Applicant.UserName, item.Applicant.Email)); err != nil {
				return row, err
			}
		}

		// "Согласующий"
		col++
		if item.Approver != nil {
			if err := writeColumn(f, sheet, col, row, item.Approver.UserName); err != nil {
				return row, err
			}
		}

		// "Статус"
		col++
		if err := writeColumn(f, sheet, col, row, item.Status.ToHuman()); err != nil {
			return row, err
		}

		// "Дата подачи"
		col++
		if !item.SubmittedAt.IsZero() {
			if err := writeColumn(f, sheet, col, row, item.SubmittedAt.Format("02.01.2006")); err != nil {
				return row, err
			}
		}

		// "Дата обработки"
		col++
		if item.ProcessedAt != nil {
			if err := writeColumn(f, sheet, col, row, item.ProcessedAt.Format("02.01.2006")); err != nil {
				return row, err
			}
		}

		// "Содержимое"
		col++
		if err := writeColumn(f, sheet, col, row, item.Content); err != nil {
			return row, err
		}
	}
	return row, nil
}
