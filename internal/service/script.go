package service

// appsScriptSource is the companion script for the spreadsheet side. The first
// sheet holds bid rows, the "users" sheet holds account rows; the first row of
// each is the header.
const appsScriptSource = `// 구글 스프레드시트 Apps Script에 복사해서 사용하세요.
function sheetFor(action) {
  const ss = SpreadsheetApp.getActiveSpreadsheet();
  if (action.indexOf('User') !== -1 || action === 'readUsers') {
    return ss.getSheetByName('users') || ss.insertSheet('users');
  }
  return ss.getSheets()[0];
}

function rowsToItems(sheet) {
  const rows = sheet.getDataRange().getValues();
  if (rows.length < 2) return [];
  const headers = rows[0];
  return rows.slice(1).map(row => {
    let obj = {};
    headers.forEach((header, i) => { obj[header] = row[i]; });
    return obj;
  });
}

function doGet(e) {
  const action = (e.parameter && e.parameter.action) || 'read';
  const sheet = sheetFor(action);
  const items = rowsToItems(sheet);
  const body = action === 'readUsers' ? { users: items } : { items: items };
  return ContentService.createTextOutput(JSON.stringify(body))
    .setMimeType(ContentService.MimeType.JSON);
}

function doPost(e) {
  const payload = JSON.parse(e.postData.contents);
  const action = payload.action;
  const data = payload.data || payload.user;
  const id = payload.id;
  const sheet = sheetFor(action);

  const rows = sheet.getDataRange().getValues();
  const headers = rows.length > 0 ? rows[0] : [];

  if (action === 'create' || action === 'createUser') {
    if (sheet.getLastRow() === 0) {
      sheet.appendRow(Object.keys(data));
      sheet.appendRow(Object.keys(data).map(h => data[h]));
    } else {
      sheet.appendRow(headers.map(h => data[h]));
    }
  } else {
    const idIndex = headers.indexOf('id');
    if (idIndex === -1) {
      return ContentService.createTextOutput(JSON.stringify({ result: 'error', message: 'id column missing' }))
        .setMimeType(ContentService.MimeType.JSON);
    }
    let found = false;
    for (let i = 1; i < rows.length; i++) {
      if (String(rows[i][idIndex]) === String(id)) {
        if (action === 'update' || action === 'updateUser') {
          sheet.getRange(i + 1, 1, 1, headers.length).setValues([headers.map(h => data[h])]);
        } else {
          sheet.deleteRow(i + 1);
        }
        found = true;
        break;
      }
    }
    if (!found) {
      return ContentService.createTextOutput(JSON.stringify({ result: 'error', message: 'row not found' }))
        .setMimeType(ContentService.MimeType.JSON);
    }
  }
  return ContentService.createTextOutput(JSON.stringify({ result: 'success' }))
    .setMimeType(ContentService.MimeType.JSON);
}`
