package xlsexport

import (
	"bytes"

	dbmodels "expense-app-backend/models/db"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

type Provider interface {
	ExportApprovalRegister(list []dbmodels.Approval) (*bytes.Buffer, error)
}

var Instance Provider

func NewHandler() {
	Instance = impl{}
}

type impl struct{}

var approvalHeaders = []string{"Расход", "Сумма", "Валюта", "Инициатор", "Согласующий", "Статус", "Срок SLA", "Дата отправки"}

func (i impl) ExportApprovalRegister(list []dbmodels.Approval) (*bytes.Buffer, error) {
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
	f.SetSheetName(sheet, "Согласования")
	return f.WriteToBuffer()
}

func writeApprovalData(f *excelize.File, sheet string, list []dbmodels.Approval, row int) (int, error) {
	if err := applyDataCellStyle(f, sheet, 1, row+1, len(approvalHeaders), len(list)+1); err != nil {
		return row, err
	}
	for _, item := range list {
		row++
		// "Расход"
		col := 1
		description := item.ExpenseID
		if item.Expense != nil && item.Expense.Description != "" {
			description = item.Expense.Description
		}
		if err := writeColumn(f, sheet, col, row, description); err != nil {
			return row, err
		}

		// "Сумма"
		col++
		if item.Expense != nil {
			if err := writeColumn(f, sheet, col, row, item.Expense.Amount.StringFixed(2)); err != nil {
				return row, err
			}
		}

		// "Валюта"
		col++
		if item.Expense != nil {
			if err := writeColumn(f, sheet, col, row, item.Expense.Currency); err != nil {
				return row, err
			}
		}

		// "Инициатор"
		col++
		if item.Requester != nil {
			if err := writeColumn(f, sheet, col, row, item.Requester.GetFullName()); err != nil {
				return row, err
			}
		}

		// "Согласующий"
		col++
		if item.Approver != nil {
			if err := writeColumn(f, sheet, col, row, item.Approver.GetFullName()); err != nil {
				return row, err
			}
		}

		// "Статус"
		col++
		if err := writeColumn(f, sheet, col, row, item.Status.ToHuman()); err != nil {
			return row, err
		}

		// "Срок SLA"
		col++
		if item.SlaDueAt != nil {
			if err := writeColumn(f, sheet, col, row, item.SlaDueAt.Format("02.01.2006 15:04")); err != nil {
				return row, err
			}
		}

		// "Дата отправки"
		col++
		if err := writeColumn(f, sheet, col, row, item.CreatedAt.Format("02.01.2006 15:04")); err != nil {
			return row, err
		}
	}
	return row, nil
}
