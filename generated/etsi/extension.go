// Package etsi provides ETSI XML structures.
// This file contains the open-content types of ETSI TS 119 612: extensions
// and other criteria lists. Their children are decoded in document order and
// elements that are not recognized are kept as AnyElement.
package etsi

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidCritical is returned when an Extension carries a Critical
// attribute that is not an xsd:boolean.
var ErrInvalidCritical = errors.New("invalid Critical attribute")

// ErrMissingCritical is returned when an Extension has no Critical attribute.
var ErrMissingCritical = errors.New("missing Critical attribute")

// AnyElement is an element kept verbatim. Namespace declarations are dropped
// from Attrs; Content is the raw inner XML.
type AnyElement struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Content []byte     `xml:",innerxml"`
}

func decodeAnyElement(d *xml.Decoder, start xml.StartElement) (*AnyElement, error) {
	var el AnyElement
	if err := d.DecodeElement(&el, &start); err != nil {
		return nil, err
	}
	attrs := el.Attrs[:0]
	for _, a := range el.Attrs {
		if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
			continue
		}
		attrs = append(attrs, a)
	}
	el.Attrs = attrs
	return &el, nil
}

// ExtensionItem is one child of an Extension. Exactly one field is set.
type ExtensionItem struct {
	Qualifications               *Qualifications
	AdditionalServiceInformation *AdditionalServiceInformation
	ExpiredCertsRevocationInfo   *ExpiredCertsRevocationInfo
	TakenOverBy                  *TakenOverBy
	Other                        *AnyElement
}

func (it ExtensionItem) value() any {
	switch {
	case it.Qualifications != nil:
		return it.Qualifications
	case it.AdditionalServiceInformation != nil:
		return it.AdditionalServiceInformation
	case it.ExpiredCertsRevocationInfo != nil:
		return it.ExpiredCertsRevocationInfo
	case it.TakenOverBy != nil:
		return it.TakenOverBy
	case it.Other != nil:
		return it.Other
	default:
		return nil
	}
}

// ExtensionType is an extension with its criticality.
type ExtensionType struct {
	Critical bool
	Items    []ExtensionItem
}

// UnmarshalXML implements xml.Unmarshaler.
func (x *ExtensionType) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	*x = ExtensionType{}
	found := false
	for _, a := range start.Attr {
		if a.Name.Local != "Critical" {
			continue
		}
		v, err := strconv.ParseBool(strings.TrimSpace(a.Value))
		if err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidCritical, a.Value)
		}
		x.Critical = v
		found = true
	}
	if !found {
		return ErrMissingCritical
	}

	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			item, err := decodeExtensionItem(d, t)
			if err != nil {
				return err
			}
			x.Items = append(x.Items, item)
		case xml.EndElement:
			return nil
		}
	}
}

func decodeExtensionItem(d *xml.Decoder, t xml.StartElement) (ExtensionItem, error) {
	var item ExtensionItem
	var err error
	switch t.Name {
	case xml.Name{Space: SIENamespace, Local: "Qualifications"}:
		item.Qualifications = &Qualifications{}
		err = d.DecodeElement(item.Qualifications, &t)
	case xml.Name{Space: TS119612Namespace, Local: "AdditionalServiceInformation"}:
		item.AdditionalServiceInformation = &AdditionalServiceInformation{}
		err = d.DecodeElement(item.AdditionalServiceInformation, &t)
	case xml.Name{Space: TS119612Namespace, Local: "ExpiredCertsRevocationInfo"}:
		item.ExpiredCertsRevocationInfo = &ExpiredCertsRevocationInfo{}
		err = d.DecodeElement(item.ExpiredCertsRevocationInfo, &t)
	case xml.Name{Space: TS119612ExtraNamespace, Local: "TakenOverBy"}:
		item.TakenOverBy = &TakenOverBy{}
		err = d.DecodeElement(item.TakenOverBy, &t)
	default:
		item.Other, err = decodeAnyElement(d, t)
	}
	return item, err
}

// MarshalXML implements xml.Marshaler.
func (x ExtensionType) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "Critical"}, Value: strconv.FormatBool(x.Critical)})
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	for _, it := range x.Items {
		if v := it.value(); v != nil {
			if err := e.Encode(v); err != nil {
				return err
			}
		}
	}
	return e.EncodeToken(start.End())
}

// OtherCriteriaItem is one child of an otherCriteriaList. Exactly one field
// is set.
type OtherCriteriaItem struct {
	CertSubjectDNAttribute *CertSubjectDNAttribute
	ExtendedKeyUsage       *ExtendedKeyUsage
	Other                  *AnyElement
}

func (it OtherCriteriaItem) value() any {
	switch {
	case it.CertSubjectDNAttribute != nil:
		return it.CertSubjectDNAttribute
	case it.ExtendedKeyUsage != nil:
		return it.ExtendedKeyUsage
	case it.Other != nil:
		return it.Other
	default:
		return nil
	}
}

// OtherCriteriaListType holds the criteria that are not defined by the
// Service Information Extension schema itself.
type OtherCriteriaListType struct {
	Items []OtherCriteriaItem
}

// UnmarshalXML implements xml.Unmarshaler.
func (x *OtherCriteriaListType) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	*x = OtherCriteriaListType{}
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var item OtherCriteriaItem
			switch t.Name {
			case xml.Name{Space: TS119612ExtraNamespace, Local: "CertSubjectDNAttribute"}:
				item.CertSubjectDNAttribute = &CertSubjectDNAttribute{}
				err = d.DecodeElement(item.CertSubjectDNAttribute, &t)
			case xml.Name{Space: TS119612ExtraNamespace, Local: "ExtendedKeyUsage"}:
				item.ExtendedKeyUsage = &ExtendedKeyUsage{}
				err = d.DecodeElement(item.ExtendedKeyUsage, &t)
			default:
				item.Other, err = decodeAnyElement(d, t)
			}
			if err != nil {
				return err
			}
			x.Items = append(x.Items, item)
		case xml.EndElement:
			return nil
		}
	}
}

// MarshalXML implements xml.Marshaler.
func (x OtherCriteriaListType) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	for _, it := range x.Items {
		if v := it.value(); v != nil {
			if err := e.Encode(v); err != nil {
				return err
			}
		}
	}
	return e.EncodeToken(start.End())
}
