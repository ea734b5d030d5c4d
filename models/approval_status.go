package models

type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "pending"
	ApprovalStatusApproved ApprovalStatus = "approved"
	ApprovalStatusRejected ApprovalStatus = "rejected"
)

var approvalStatusHumanName = map[ApprovalStatus]string{
	ApprovalStatusPending:  "На рассмотрении",
	ApprovalStatusApproved: "Согласовано",
	ApprovalStatusRejected: "Отклонено",
}

func (s ApprovalStatus) ToHuman() string {
	if human, exist := approvalStatusHumanName[s]; exist {
		return human
	}
	return string(s)
}

func (s ApprovalStatus) IsTerminal() bool {
	return s == ApprovalStatusApproved || s == ApprovalStatusRejected
}

type SortOrder string

const (
	SortOrderAsc  SortOrder = "ASC"
	SortOrderDesc SortOrder = "DESC"
)
