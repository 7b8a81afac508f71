// Package generatortest holds frameworks shared by the renderer tests.
package generatortest

import (
	"github.com/fluohq/compliancegen/pkg/control"
)

// GDPR returns a small GDPR framework.
func GDPR() *control.Framework {
	return &control.Framework{
		ID:          "gdpr",
		Name:        "General Data Protection Regulation",
		Version:     "2016/679",
		Description: "Regulation on the protection of natural persons with regard to the processing of personal data.",
		Controls: []*control.Control{
			{
				ID:          "Art.5(1)(f)",
				Name:        "Integrity and confidentiality",
				Category:    "Principles",
				Description: "Personal data shall be processed in a manner that ensures appropriate security of the personal data.",
				Requirements: []string{
					"Protect against unauthorised or unlawful processing",
					"Protect against accidental loss, destruction or damage",
				},
				EvidenceTypes:          []control.EvidenceType{control.EvidenceLog, control.EvidenceAuditTrail},
				RiskLevel:              control.RiskHigh,
				ImplementationGuidance: "Encrypt personal data at rest and in transit.\n\nRestrict access to personal data to the people who need it.",
				TestingProcedures:      []string{"Review encryption configuration"},
				CanonicalObjectives:    []string{"confidentiality", "integrity"},
				Metadata:               map[string]interface{}{"article": 5, "chapter": "II"},
			},
			{
				ID:            "Art.15",
				Name:          "Right of access by the data subject",
				Category:      "Rights of the data subject",
				Description:   "The data subject shall have the right to obtain confirmation as to whether personal data concerning them are being processed.",
				EvidenceTypes: []control.EvidenceType{control.EvidenceAuditTrail},
				RiskLevel:     control.RiskMedium,
			},
			{
				ID:        "Art.32",
				Name:      "Security of processing",
				RiskLevel: control.RiskCritical,
			},
		},
	}
}

// SOC2 returns a small SOC 2 framework.
func SOC2() *control.Framework {
	return &control.Framework{
		ID:      "soc2",
		Name:    "SOC 2",
		Version: "2017",
		Controls: []*control.Control{
			{
				ID:            "CC6.1",
				Name:          "Logical access security",
				Category:      "Common Criteria",
				Description:   "The entity implements logical access security software, infrastructure and architectures.",
				EvidenceTypes: []control.EvidenceType{control.EvidenceConfig, control.EvidenceAuditTrail},
				RiskLevel:     control.RiskHigh,
			},
			{
				ID:        "CC7.2",
				Name:      "System monitoring",
				Category:  "Common Criteria",
				RiskLevel: control.RiskMedium,
				EvidenceTypes: []control.EvidenceType{
					control.EvidenceAlert, control.EvidenceMetric, control.EvidenceLog,
				},
			},
		},
	}
}

// Hostile is text trying to close every literal and comment kind early.
// It is free of characters comments cannot carry.
const Hostile = "*/ \"\"\" ''' ` ${x} \\u000a \\ \"quoted\" <b>bold</b> & @param {@code x} # not a comment // nor this é 日本 🎉"

// HostileLiteral additionally holds characters only literals can carry.
const HostileLiteral = Hostile + " \x00\x1b\x7f \u202e\u2066\u2028\u2029\ufeff \r\n\ttab"

// Adversarial returns a framework whose text tries to break out of every
// literal and comment kind.
func Adversarial() *control.Framework {
	return &control.Framework{
		ID:          "adversarial-fw",
		Name:        "Adversarial " + Hostile,
		Version:     "1.0 \"beta\"",
		Description: Hostile + "\n\n" + Hostile,
		Controls: []*control.Control{
			{
				ID:                     "A.1 " + Hostile,
				Name:                   Hostile,
				Category:               HostileLiteral,
				Description:            Hostile + "\n\nSecond paragraph " + Hostile,
				Requirements:           []string{HostileLiteral, ""},
				EvidenceTypes:          []control.EvidenceType{control.EvidenceReport},
				RiskLevel:              control.RiskLow,
				ImplementationGuidance: HostileLiteral + "\n\n\n" + HostileLiteral,
				TestingProcedures:      []string{HostileLiteral},
				CanonicalObjectives:    []string{"\"\"\""},
				Metadata:               map[string]interface{}{"note": HostileLiteral},
			},
			{
				ID:        "class",
				Name:      "Reserved word id",
				RiskLevel: control.RiskLow,
			},
			{
				ID:        "164.312(a)(1)",
				Name:      "Leading digit id",
				RiskLevel: control.RiskLow,
			},
		},
	}
}

// Empty returns a framework without controls.
func Empty() *control.Framework {
	return &control.Framework{ID: "empty", Name: "Empty"}
}

// Frameworks returns every fixture framework.
func Frameworks() []*control.Framework {
	return []*control.Framework{GDPR(), SOC2(), Adversarial(), Empty()}
}
