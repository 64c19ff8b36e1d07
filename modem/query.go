package modem

import (
	"context"
	"fmt"
	"time"

	"i4.energy/across/gsmlink/at"
)

// DeviceInfo identifies the SIM in the modem.
type DeviceInfo struct {
	ICCID string `json:"iccid"`
	IMSI  string `json:"imsi"`
}

// query issues cmd and returns its second item. The first item is the
// command echoed back by the modem.
func (m *Modem) query(ctx context.Context, cmd string, timeout time.Duration) (string, error) {
	res, err := m.exec(ctx, at.Cmd(cmd, timeout))
	if err != nil {
		return "", err
	}
	if len(res.Items) < 2 {
		return "", fmt.Errorf("%s: %w", cmd, ErrNoValue)
	}
	return res.Items[1], nil
}

// ICCID returns the SIM card's integrated circuit card identifier.
func (m *Modem) ICCID(ctx context.Context) (string, error) {
	iccid, err := m.query(ctx, at.CmdICCID, m.config.timeouts.Query)
	if err != nil {
		m.logger.Error("Error getting ICCID", "error", err)
		return "", err
	}
	m.logger.Debug("ICCID read", "iccid", iccid)
	return iccid, nil
}

// IMSI returns the subscriber identity stored on the SIM.
func (m *Modem) IMSI(ctx context.Context) (string, error) {
	imsi, err := m.query(ctx, at.CmdIMSI, m.config.timeouts.Query)
	if err != nil {
		m.logger.Error("Error getting IMSI", "error", err)
		return "", err
	}
	m.logger.Debug("IMSI read", "imsi", imsi)
	return imsi, nil
}

// DeviceInfo reads the ICCID and then the IMSI, stopping at the first failure.
func (m *Modem) DeviceInfo(ctx context.Context) (DeviceInfo, error) {
	m.logger.Debug("Getting device information")
	iccid, err := m.ICCID(ctx)
	if err != nil {
		return DeviceInfo{}, err
	}
	imsi, err := m.IMSI(ctx)
	if err != nil {
		return DeviceInfo{ICCID: iccid}, err
	}
	return DeviceInfo{ICCID: iccid, IMSI: imsi}, nil
}

// Status returns the first value of the network registration report.
func (m *Modem) Status(ctx context.Context) (string, error) {
	return m.query(ctx, at.CmdRegistration, m.config.timeouts.Status)
}

// SignalStrength returns the received signal strength indicator.
func (m *Modem) SignalStrength(ctx context.Context) (string, error) {
	return m.query(ctx, at.CmdSignalQuality, m.config.timeouts.Query)
}
