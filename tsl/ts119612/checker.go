package ts119612

import (
	"go.uber.org/zap"

	"github.com/georgepadayatti/gotsl/tsl"
)

// Checker validates the structure of a built TS 119 612 trusted list and the
// values of its extensions and criteria.
type Checker struct {
	opts options
}

// NewChecker creates a checker.
func NewChecker(opts ...Option) *Checker {
	return &Checker{opts: newOptions(opts)}
}

// Check validates t. With enforceSignature the list must carry a signature
// that the configured verifier accepts. The first failure is returned.
func (c *Checker) Check(t *tsl.TSLObject, enforceSignature bool) error {
	if t == nil {
		return tsl.NewArgumentError(tsl.CodeNilValue, "trusted list is nil")
	}
	log := c.opts.logger.With(zap.String("tsl_id", t.ID()))

	if enforceSignature {
		if err := c.checkSignature(t); err != nil {
			return err
		}
	}

	si := t.SchemeInformation()
	if si == nil {
		return tsl.NewMalformedError(tsl.CodeMissingElement, "SchemeInformation is missing")
	}
	if err := c.checkScheme(t, si, log); err != nil {
		return err
	}

	providers, _ := t.TrustServiceProviders()
	for i, p := range providers {
		if err := c.checkProvider(t, p, i); err != nil {
			return err
		}
	}

	log.Debug("trusted list checked",
		zap.String("territory", si.SchemeTerritory),
		zap.Int("sequence", si.SequenceNumber),
		zap.Int("providers", len(providers)))
	return nil
}

func (c *Checker) checkSignature(t *tsl.TSLObject) error {
	if t.Signature() == nil {
		return tsl.NewMalformedError(tsl.CodeSignatureMissing, "trusted list is not signed")
	}
	if c.opts.verifier == nil {
		return tsl.NewMalformedError(tsl.CodeSignatureInvalid, "no signature verifier is configured")
	}
	signer, err := c.opts.verifier.Verify(t.Raw())
	if err != nil {
		e := tsl.NewMalformedError(tsl.CodeSignatureInvalid, "trusted list signature is not valid")
		e.Err = err
		return e
	}
	if signer != nil {
		c.opts.logger.Debug("trusted list signature verified", zap.String("signer", signer.Subject.String()))
	}
	return nil
}

func (c *Checker) ruleContext(t *tsl.TSLObject, shi *tsl.ServiceHistoryInstance) tsl.RuleContext {
	return tsl.RuleContext{TSL: t, Service: shi, Logger: c.opts.logger, Namer: c.opts.namer}
}

func (c *Checker) checkScheme(t *tsl.TSLObject, si *tsl.SchemeInformation, log *zap.Logger) error {
	switch {
	case t.Tag() == "":
		return tsl.NewMalformedError(tsl.CodeMissingElement, "TSLTag is missing")
	case t.Tag() != tsl.TSLTag119612:
		return tsl.NewMalformedError(tsl.CodeInvalidValue, "TSLTag %q is not %q", t.Tag(), tsl.TSLTag119612)
	case si.VersionIdentifier != tsl.TSLVersion5:
		return tsl.NewMalformedError(tsl.CodeInvalidValue, "TSLVersionIdentifier is %d, want %d", si.VersionIdentifier, tsl.TSLVersion5)
	case si.SequenceNumber < 1:
		return tsl.NewMalformedError(tsl.CodeInvalidValue, "TSLSequenceNumber must be positive, got %d", si.SequenceNumber)
	case si.TSLType == "":
		return tsl.NewMalformedError(tsl.CodeMissingElement, "TSLType is missing")
	case si.SchemeOperatorName.IsEmpty():
		return tsl.NewMalformedError(tsl.CodeMissingElement, "SchemeOperatorName is missing")
	case si.SchemeName.IsEmpty():
		return tsl.NewMalformedError(tsl.CodeMissingElement, "SchemeName is missing")
	case len(si.SchemeInformationURIs) == 0:
		return tsl.NewMalformedError(tsl.CodeMissingElement, "SchemeInformationURI is missing")
	case si.StatusDeterminationApproach == "":
		return tsl.NewMalformedError(tsl.CodeMissingElement, "StatusDeterminationApproach is missing")
	case si.HistoricalInformationPeriod < 0:
		return tsl.NewMalformedError(tsl.CodeInvalidValue, "HistoricalInformationPeriod must not be negative")
	case si.ListIssueDateTime.IsZero():
		return tsl.NewMalformedError(tsl.CodeMissingElement, "ListIssueDateTime is missing")
	}

	if si.NextUpdate != nil {
		if !si.NextUpdate.After(si.ListIssueDateTime) {
			return tsl.NewMalformedError(tsl.CodeInvalidValue, "NextUpdate %s is not after ListIssueDateTime %s",
				si.NextUpdate.Format("2006-01-02T15:04:05Z07:00"), si.ListIssueDateTime.Format("2006-01-02T15:04:05Z07:00"))
		}
		if now := c.opts.clock.Now(); si.NextUpdate.Before(now) {
			log.Warn("trusted list is past its next update",
				zap.Time("next_update", *si.NextUpdate),
				zap.Time("now", now))
		}
	} else {
		log.Info("trusted list is closed: NextUpdate has no date")
	}

	for _, p := range si.Pointers {
		if !p.IsThereSomeIdentity() {
			log.Warn("pointer to other trusted list has no digital identity", zap.String("location", p.Location()))
		}
	}

	ctx := c.ruleContext(t, nil)
	for _, e := range si.Extensions {
		if err := tsl.CheckExtension(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (c *Checker) checkProvider(t *tsl.TSLObject, p *tsl.TrustServiceProvider, index int) error {
	info := p.Information()
	if info.Name().IsEmpty() {
		return tsl.NewMalformedError(tsl.CodeMissingElement, "TSPName of provider %d is missing", index)
	}
	name := info.Name().Preferred()

	if exts, ok := info.Extensions(); ok {
		ctx := c.ruleContext(t, nil)
		for _, e := range exts {
			if err := tsl.CheckExtension(ctx, e); err != nil {
				return err
			}
		}
	}

	services, ok := p.AllTSPServices()
	if !ok {
		return tsl.NewMalformedError(tsl.CodeMissingElement, "provider %q has no TSPService", name)
	}
	for _, s := range services {
		if err := c.checkService(t, s, name); err != nil {
			return err
		}
	}
	return nil
}

func (c *Checker) checkService(t *tsl.TSLObject, s *tsl.TSPService, provider string) error {
	info := s.Information()
	if info == nil {
		return tsl.NewMalformedError(tsl.CodeMissingElement, "a service of provider %q has no ServiceInformation", provider)
	}
	if err := c.checkServiceState(t, &info.ServiceHistoryInstance, provider); err != nil {
		return err
	}

	history, _ := s.History()
	for _, h := range history {
		if err := c.checkServiceState(t, h, provider); err != nil {
			return err
		}
		if !h.StatusStartingTime().Before(info.StatusStartingTime()) {
			c.opts.logger.Warn("service history does not start before the current status",
				zap.String("code", string(tsl.CodeHistoryOrder)),
				zap.String("tsl_id", t.ID()),
				zap.String("provider", provider),
				zap.String("service", info.ServiceName().Preferred()),
				zap.Time("history_start", h.StatusStartingTime()),
				zap.Time("status_start", info.StatusStartingTime()))
		}
	}
	return nil
}

func (c *Checker) checkServiceState(t *tsl.TSLObject, shi *tsl.ServiceHistoryInstance, provider string) error {
	switch {
	case shi.ServiceTypeIdentifier() == "":
		return tsl.NewMalformedError(tsl.CodeMissingElement, "ServiceTypeIdentifier is missing in a service of provider %q", provider)
	case shi.ServiceName().IsEmpty():
		return tsl.NewMalformedError(tsl.CodeMissingElement, "ServiceName is missing in a service of provider %q", provider)
	case shi.ServiceStatus() == "":
		return tsl.NewMalformedError(tsl.CodeMissingElement, "ServiceStatus is missing in service %q", shi.ServiceName().Preferred())
	case shi.StatusStartingTime().IsZero():
		return tsl.NewMalformedError(tsl.CodeMissingElement, "StatusStartingTime is missing in service %q", shi.ServiceName().Preferred())
	}

	exts, ok := shi.Extensions()
	if !ok {
		return nil
	}
	ctx := c.ruleContext(t, shi)
	for _, e := range exts {
		if err := tsl.CheckExtension(ctx, e); err != nil {
			return err
		}
	}
	return nil
}
