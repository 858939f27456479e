package domains

import (
	"encoding/json"

	"sitehost/internal/edge"
	"sitehost/internal/model"
)

// DNSRecordDTO is one DNS record the user must create
type DNSRecordDTO struct {
	Type  string `json:"type"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

// DomainResponse is the success body for create and refresh
type DomainResponse struct {
	Success     bool           `json:"success"`
	Domain      model.Domain   `json:"domain"`
	DNSRecords  []DNSRecordDTO `json:"dnsRecords"`
	CnameTarget string         `json:"cnameTarget"`
}

// CreateRequest is the request body for POST /domains
type CreateRequest struct {
	SiteID   int    `json:"siteId"`
	Hostname string `json:"hostname"`
}

// MutateRequest is the request body for PATCH and DELETE /domains
type MutateRequest struct {
	ID int `json:"id"`
}

// dnsRecords derives the records the user must publish: the routing CNAME
// pointing the hostname at the edge, plus any provider validation records.
func dnsRecords(d *model.Domain, cnameTarget string) []DNSRecordDTO {
	records := []DNSRecordDTO{
		{Type: "CNAME", Name: d.Hostname, Value: cnameTarget},
	}

	var validation []edge.ValidationRecord
	if len(d.ValidationRecords) > 0 {
		_ = json.Unmarshal(d.ValidationRecords, &validation)
	}

	for _, r := range validation {
		switch {
		case r.CnameTarget != "":
			records = append(records, DNSRecordDTO{Type: "CNAME", Name: r.CnameName, Value: r.CnameTarget})
		case r.TxtValue != "":
			records = append(records, DNSRecordDTO{Type: "TXT", Name: r.TxtName, Value: r.TxtValue})
		case r.HTTPURL != "":
			records = append(records, DNSRecordDTO{Type: "HTTP", Name: r.HTTPURL, Value: r.HTTPBody})
		}
	}

	return records
}
